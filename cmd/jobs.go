package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/accrual"
	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Run a balance job once",
	Long:  `Run monthly accrual or annual carry-forward immediately, outside the scheduler.`,
}

var accrueJobCmd = &cobra.Command{
	Use:   "accrue",
	Short: "Run monthly accrual for the month of --at",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJobOnce(func(j *accrual.Jobs) func(context.Context, time.Time) (*accrual.Report, error) {
			return j.RunMonthlyAccrual
		})
	},
}

var carryForwardJobCmd = &cobra.Command{
	Use:   "carry-forward",
	Short: "Run annual carry-forward for the year of --at",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJobOnce(func(j *accrual.Jobs) func(context.Context, time.Time) (*accrual.Report, error) {
			return j.RunAnnualCarryForward
		})
	},
}

var jobAt string

func init() {
	jobsCmd.PersistentFlags().StringVar(&jobAt, "at", "", "run as of this date (YYYY-MM-DD), defaults to today")
	jobsCmd.AddCommand(accrueJobCmd)
	jobsCmd.AddCommand(carryForwardJobCmd)
}

func runJobOnce(pick func(*accrual.Jobs) func(context.Context, time.Time) (*accrual.Report, error)) error {
	ctx := context.Background()
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	at, err := jobTime(jobAt, a.cfg.Scheduler.Location())
	if err != nil {
		return err
	}

	report, err := pick(a.jobs())(ctx, at)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func jobTime(raw string, loc *time.Location) (time.Time, error) {
	if raw == "" {
		return time.Now().In(loc), nil
	}
	at, err := time.ParseInLocation(internal.DateLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at %q: %w", raw, err)
	}
	return at, nil
}
