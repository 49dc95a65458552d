package approval_test

import (
	"context"
	"errors"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/approval"
	approvalPostgres "github.com/frahmantamala/leave-management/internal/approval/postgres"
	"github.com/frahmantamala/leave-management/internal/core/datamodel"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Flow", func() {
	var (
		db   *gorm.DB
		flow *approval.Flow
		ctx  context.Context
	)

	const requestID = int64(10)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(datamodel.AutoMigrate(db)).To(Succeed())

		flow = approval.NewFlow(approvalPostgres.NewApprovalRepository(db))
		ctx = context.Background()
	})

	openInsufficient := func() {
		_, err := flow.Open(ctx, requestID, []approval.Step{
			{ApproverID: 2, Status: approval.StatusPending, Remarks: approval.RemarkPendingInsufficient},
			{ApproverID: 1, Status: approval.StatusPendingSeniorManager, Remarks: approval.RemarkPendingSeniorManager},
		})
		Expect(err).NotTo(HaveOccurred())
	}

	It("should return the trail oldest first", func() {
		openInsufficient()

		trail, err := flow.Trail(ctx, requestID)

		Expect(err).NotTo(HaveOccurred())
		Expect(trail).To(HaveLen(2))
		Expect(trail[0].ApproverID).To(Equal(int64(2)))
		Expect(trail[1].ApproverID).To(Equal(int64(1)))
		Expect(trail[1].Status).To(Equal(approval.StatusPendingSeniorManager))
	})

	Describe("Decide", func() {
		It("should update the approver's entry at the given stage", func() {
			openInsufficient()

			entry, err := flow.Decide(ctx, requestID, 2, approval.StatusPending, approval.StatusApproved, approval.RemarkForwarded)

			Expect(err).NotTo(HaveOccurred())
			Expect(entry.Status).To(Equal(approval.StatusApproved))

			var stored leaveDatamodel.ApprovalFlow
			Expect(db.First(&stored, entry.ID).Error).To(Succeed())
			Expect(stored.Status).To(Equal("APPROVED"))
			Expect(stored.Remarks).To(Equal(approval.RemarkForwarded))
		})

		It("should fail when the approver holds no entry at that stage", func() {
			openInsufficient()

			_, err := flow.Decide(ctx, requestID, 1, approval.StatusPending, approval.StatusApproved, "")

			Expect(errors.Is(err, internal.ErrApprovalEntryNotFound)).To(BeTrue())
		})
	})

	Describe("EnsureSeniorStep", func() {
		It("should not duplicate an existing senior manager entry", func() {
			openInsufficient()

			Expect(flow.EnsureSeniorStep(ctx, requestID, 1)).To(Succeed())

			trail, err := flow.Trail(ctx, requestID)
			Expect(err).NotTo(HaveOccurred())
			Expect(trail).To(HaveLen(2))
		})

		It("should append the entry when it is missing", func() {
			_, err := flow.Open(ctx, requestID, []approval.Step{
				{ApproverID: 2, Status: approval.StatusPending, Remarks: approval.RemarkPendingSufficient},
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(flow.EnsureSeniorStep(ctx, requestID, 1)).To(Succeed())

			trail, err := flow.Trail(ctx, requestID)
			Expect(err).NotTo(HaveOccurred())
			Expect(trail).To(HaveLen(2))
			Expect(trail[1].Status).To(Equal(approval.StatusPendingSeniorManager))
		})
	})

	It("should drop only the pending escalation", func() {
		openInsufficient()

		n, err := flow.DropEscalation(ctx, requestID)

		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(int64(1)))
		trail, err := flow.Trail(ctx, requestID)
		Expect(err).NotTo(HaveOccurred())
		Expect(trail).To(HaveLen(1))
		Expect(trail[0].Status).To(Equal(approval.StatusPending))
	})

	It("should purge every entry and hand back what was removed", func() {
		openInsufficient()

		purged, err := flow.Purge(ctx, requestID)

		Expect(err).NotTo(HaveOccurred())
		Expect(purged).To(HaveLen(2))
		trail, err := flow.Trail(ctx, requestID)
		Expect(err).NotTo(HaveOccurred())
		Expect(trail).To(BeEmpty())

		again, err := flow.Purge(ctx, requestID)
		Expect(err).NotTo(HaveOccurred())
		Expect(again).To(BeEmpty())
	})
})
