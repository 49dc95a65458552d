package accrual_test

import (
	"context"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/accrual"
	"github.com/frahmantamala/leave-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type countingRunner struct {
	monthly chan time.Time
}

func (r *countingRunner) RunMonthlyAccrual(_ context.Context, now time.Time) (*accrual.Report, error) {
	select {
	case r.monthly <- now:
	default:
	}
	return &accrual.Report{Job: accrual.JobMonthlyAccrual}, nil
}

func (r *countingRunner) RunAnnualCarryForward(context.Context, time.Time) (*accrual.Report, error) {
	return &accrual.Report{Job: accrual.JobAnnualCarryForward}, nil
}

var _ = Describe("Scheduler", func() {
	cfg := internal.SchedulerConfig{
		Enabled:                true,
		Timezone:               "Asia/Kolkata",
		MonthlyAccrualSpec:     "9 9 9 * *",
		AnnualCarryForwardSpec: "0 0 1 1 *",
	}

	It("should register both jobs in the configured timezone", func() {
		// When the scheduler is built
		s, err := accrual.NewScheduler(cfg, &countingRunner{}, logger.Discard())
		Expect(err).NotTo(HaveOccurred())

		// Then both jobs fire in the configured location
		entries := s.Entries()
		Expect(entries).To(HaveLen(2))
		kolkata, _ := time.LoadLocation("Asia/Kolkata")
		from := time.Date(2026, 3, 1, 0, 0, 0, 0, kolkata)
		Expect(entries[0].Schedule.Next(from)).To(BeTemporally("==", time.Date(2026, 3, 9, 9, 9, 0, 0, kolkata)))
		Expect(entries[1].Schedule.Next(from)).To(BeTemporally("==", time.Date(2027, 1, 1, 0, 0, 0, 0, kolkata)))
	})

	It("should reject a malformed cron expression", func() {
		bad := cfg
		bad.MonthlyAccrualSpec = "every month"

		_, err := accrual.NewScheduler(bad, &countingRunner{}, logger.Discard())

		Expect(err).To(MatchError(ContainSubstring("invalid monthly accrual spec")))
	})

	It("should run a due job and stop cleanly", func() {
		// Given a cron expression that fires every second
		runner := &countingRunner{monthly: make(chan time.Time, 1)}
		every := cfg
		every.MonthlyAccrualSpec = "@every 1s"
		s, err := accrual.NewScheduler(every, runner, logger.Discard())
		Expect(err).NotTo(HaveOccurred())

		// When the scheduler runs
		s.Start()

		// Then the job receives the time in the configured zone
		var fired time.Time
		Eventually(runner.monthly, 3*time.Second).Should(Receive(&fired))
		Expect(fired.Location().String()).To(Equal("Asia/Kolkata"))

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		Expect(s.Stop(ctx)).To(Succeed())
	})
})
