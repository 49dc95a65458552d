package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/leave-management/internal/accrual"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start long running background workers such as the balance job scheduler.`,
}

var schedulerWorkerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Start the balance job scheduler",
	Long:  `Run monthly accrual and annual carry-forward on their cron schedules until interrupted.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := startSchedulerWorker(); err != nil {
			fmt.Fprintf(os.Stderr, "scheduler failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	workerCmd.AddCommand(schedulerWorkerCmd)
}

func startSchedulerWorker() error {
	a, err := bootstrap(context.Background())
	if err != nil {
		return err
	}
	defer a.close()

	if !a.cfg.Scheduler.Enabled {
		a.logger.Warn("scheduler disabled in config, nothing to run")
		return nil
	}

	scheduler, err := accrual.NewScheduler(a.cfg.Scheduler, a.jobs(), a.logger)
	if err != nil {
		return err
	}
	scheduler.Start()

	for _, entry := range scheduler.Entries() {
		a.logger.Info("balance job scheduled", "entry_id", entry.ID, "next", entry.Next)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	a.logger.Info("received signal, stopping scheduler", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := scheduler.Stop(ctx); err != nil {
		a.logger.Error("scheduler did not stop cleanly", "error", err)
	}
	a.logger.Info("scheduler stopped")
	return nil
}

