package leave_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/approval"
	approvalPostgres "github.com/frahmantamala/leave-management/internal/approval/postgres"
	"github.com/frahmantamala/leave-management/internal/core/datamodel"
	employeeDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/employee"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/employee"
	employeePostgres "github.com/frahmantamala/leave-management/internal/employee/postgres"
	"github.com/frahmantamala/leave-management/internal/leave"
	leavePostgres "github.com/frahmantamala/leave-management/internal/leave/postgres"
	"github.com/frahmantamala/leave-management/internal/leavetype"
	leavetypePostgres "github.com/frahmantamala/leave-management/internal/leavetype/postgres"
	"github.com/frahmantamala/leave-management/internal/workday"
	"github.com/frahmantamala/leave-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type fakeCalendar struct {
	holidays workday.Set
}

func (f *fakeCalendar) HolidaysBetween(_ context.Context, _, _ time.Time) (workday.Set, error) {
	return f.holidays, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

func (p *recordingPublisher) last() *events.LeaveEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1].(*events.LeaveEvent)
}

const reason = "attending a family wedding out of town"

var (
	monday    = "2026-03-02"
	tuesday   = "2026-03-03"
	wednesday = "2026-03-04"
	saturday  = "2026-03-07"
	sunday    = "2026-03-08"
	floater   = time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
)

var _ = Describe("Service", func() {
	var (
		db        *gorm.DB
		svc       *leave.Service
		calendar  *fakeCalendar
		publisher *recordingPublisher
		ctx       context.Context

		senior, manager, staff *employeeDatamodel.Employee
		sick, earned, floaterT *leaveDatamodel.LeaveType
	)

	seedBalance := func(emp *employeeDatamodel.Employee, lt *leaveDatamodel.LeaveType, value int) {
		Expect(db.Create(&leaveDatamodel.LeaveBalance{EmployeeID: emp.ID, LeaveTypeID: lt.ID, Balance: value}).Error).To(Succeed())
		Expect(db.Model(emp).Update("total_leave_balance", gorm.Expr("total_leave_balance + ?", value)).Error).To(Succeed())
	}

	balanceOf := func(emp *employeeDatamodel.Employee, lt *leaveDatamodel.LeaveType) int {
		var b leaveDatamodel.LeaveBalance
		Expect(db.Where("employee_id = ? AND leave_type_id = ?", emp.ID, lt.ID).First(&b).Error).To(Succeed())
		return b.Balance
	}

	expectTotalConsistent := func(emp *employeeDatamodel.Employee) {
		var sum int
		Expect(db.Model(&leaveDatamodel.LeaveBalance{}).Where("employee_id = ?", emp.ID).
			Select("COALESCE(SUM(balance), 0)").Scan(&sum).Error).To(Succeed())
		var fresh employeeDatamodel.Employee
		Expect(db.First(&fresh, emp.ID).Error).To(Succeed())
		Expect(fresh.TotalLeaveBalance).To(Equal(sum))
	}

	requestOf := func(id int64) *leaveDatamodel.LeaveRequest {
		var req leaveDatamodel.LeaveRequest
		Expect(db.First(&req, id).Error).To(Succeed())
		return &req
	}

	flowsOf := func(id int64) []leaveDatamodel.ApprovalFlow {
		var rows []leaveDatamodel.ApprovalFlow
		Expect(db.Where("leave_request_id = ?", id).Order("id ASC").Find(&rows).Error).To(Succeed())
		return rows
	}

	submit := func(emp *employeeDatamodel.Employee, lt *leaveDatamodel.LeaveType, from, to string) (*leave.SubmitResult, error) {
		return svc.Submit(ctx, emp.ID, leave.SubmitLeaveDTO{
			LeaveTypeID: lt.ID,
			FromDate:    from,
			ToDate:      to,
			Reason:      reason,
		})
	}

	approve := func(approverID int64, role employee.Role, requestID int64) (*leave.DecisionResult, error) {
		return svc.Decide(ctx, approverID, role, leave.ChangeStatusDTO{
			NewStatus:  "APPROVED",
			LeaveReqID: requestID,
		})
	}

	reject := func(approverID int64, role employee.Role, requestID int64) (*leave.DecisionResult, error) {
		why := "project deadline falls within those dates"
		return svc.Decide(ctx, approverID, role, leave.ChangeStatusDTO{
			NewStatus:       "REJECTED",
			LeaveReqID:      requestID,
			RejectionReason: &why,
		})
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(datamodel.AutoMigrate(db)).To(Succeed())

		senior = &employeeDatamodel.Employee{Name: "Meera", Email: "meera@example.com", Role: "SENIOR_MANAGER"}
		Expect(db.Create(senior).Error).To(Succeed())
		manager = &employeeDatamodel.Employee{Name: "Arjun", Email: "arjun@example.com", Role: "MANAGER", ManagerID: &senior.ID}
		Expect(db.Create(manager).Error).To(Succeed())
		staff = &employeeDatamodel.Employee{Name: "Ravi", Email: "ravi@example.com", Role: "EMPLOYEE", ManagerID: &manager.ID}
		Expect(db.Create(staff).Error).To(Succeed())

		sick = &leaveDatamodel.LeaveType{Name: leavetype.SickLeave}
		earned = &leaveDatamodel.LeaveType{Name: leavetype.EarnedLeave, IsCarryForward: true}
		floaterT = &leaveDatamodel.LeaveType{Name: leavetype.FloaterLeave}
		Expect(db.Create(sick).Error).To(Succeed())
		Expect(db.Create(earned).Error).To(Succeed())
		Expect(db.Create(floaterT).Error).To(Succeed())

		lg := logger.Discard()
		calendar = &fakeCalendar{holidays: workday.Set{}}
		publisher = &recordingPublisher{}
		ctx = context.Background()

		svc = leave.NewService(leave.Dependencies{
			Requests:   leavePostgres.NewLeaveRepository(db),
			Flow:       approval.NewFlow(approvalPostgres.NewApprovalRepository(db)),
			Transactor: leavePostgres.NewTransactor(db),
			Directory:  employee.NewService(employeePostgres.NewEmployeeRepository(db), lg),
			LeaveTypes: leavetype.NewService(leavetypePostgres.NewLeaveTypeRepository(db), lg),
			Calendar:   calendar,
			Calculator: workday.NewCalculator([]time.Time{floater}),
			Router:     approval.NewRouter(),
			Publisher:  publisher,
			Logger:     lg,
		})
	})

	Describe("Submit", func() {
		It("should auto-approve sick leave and deduct it immediately", func() {
			// Given a sick balance of 3
			seedBalance(staff, sick, 3)

			// When a two weekday sick leave is submitted
			result, err := submit(staff, sick, monday, tuesday)

			// Then it is approved, deducted and the manager is notified
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(approval.StatusApproved))
			Expect(result.NumOfDays).To(Equal(2))
			Expect(result.Message).To(Equal("sick leave approved and 2 days deducted from balance."))
			Expect(balanceOf(staff, sick)).To(Equal(1))
			expectTotalConsistent(staff)

			flows := flowsOf(result.LeaveRequestID)
			Expect(flows).To(HaveLen(1))
			Expect(flows[0].ApproverID).To(Equal(manager.ID))
			Expect(flows[0].Status).To(Equal("APPROVED"))
			Expect(flows[0].Remarks).To(Equal(approval.RemarkSickAutoApproved))
			Expect(publisher.types()).To(Equal([]string{events.EventTypeLeaveAutoApproved}))
		})

		It("should approve sick leave without deduction when the balance is short", func() {
			seedBalance(staff, sick, 1)

			result, err := submit(staff, sick, monday, tuesday)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(approval.StatusApproved))
			Expect(result.Message).To(Equal("sick leave approved without deduction: balance insufficient for 2 days."))
			Expect(balanceOf(staff, sick)).To(Equal(1))
			expectTotalConsistent(staff)
		})

		It("should route to the manager when the balance is sufficient", func() {
			seedBalance(staff, earned, 5)

			result, err := submit(staff, earned, monday, wednesday)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(approval.StatusPending))
			Expect(result.Message).To(Equal("earned leave request sent to manager for 3 days."))
			Expect(*requestOf(result.LeaveRequestID).ApproverID).To(Equal(manager.ID))
			Expect(flowsOf(result.LeaveRequestID)).To(HaveLen(1))
			Expect(balanceOf(staff, earned)).To(Equal(5))
		})

		It("should skip public holidays when counting days", func() {
			seedBalance(staff, earned, 5)
			calendar.holidays = workday.NewSet(time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC))

			result, err := submit(staff, earned, monday, wednesday)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.NumOfDays).To(Equal(2))
		})

		It("should reject a range made only of weekends", func() {
			seedBalance(staff, earned, 5)

			_, err := submit(staff, earned, saturday, sunday)

			Expect(errors.Is(err, internal.ErrNonWorkingDaysOnly)).To(BeTrue())
		})

		It("should reject floater leave outside the floater list before routing", func() {
			_, err := submit(staff, floaterT, monday, monday)

			Expect(errors.Is(err, internal.ErrInvalidFloaterDate)).To(BeTrue())
			var count int64
			Expect(db.Model(&leaveDatamodel.LeaveRequest{}).Count(&count).Error).To(Succeed())
			Expect(count).To(BeZero())
		})

		It("should accept floater leave on a floater date as one day", func() {
			seedBalance(staff, floaterT, 1)

			result, err := submit(staff, floaterT, wednesday, wednesday)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.NumOfDays).To(Equal(1))
			Expect(result.Status).To(Equal(approval.StatusPending))
		})

		It("should reject a duplicate active range and allow it again after cancelling", func() {
			seedBalance(staff, earned, 5)
			first, err := submit(staff, earned, monday, tuesday)
			Expect(err).NotTo(HaveOccurred())

			_, err = submit(staff, earned, monday, tuesday)
			Expect(errors.Is(err, internal.ErrDuplicateRequest)).To(BeTrue())
			Expect(err.Error()).To(Equal("Leave already exists for the selected date range (2026-03-02 to 2026-03-03)."))

			_, err = svc.Cancel(ctx, staff.ID, leave.CancelLeaveDTO{LeaveReqID: first.LeaveRequestID})
			Expect(err).NotTo(HaveOccurred())

			_, err = submit(staff, earned, monday, tuesday)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should fail when the employee has no manager", func() {
			seedBalance(senior, earned, 5)

			_, err := submit(senior, earned, monday, tuesday)

			Expect(errors.Is(err, internal.ErrNoApproverFound)).To(BeTrue())
		})

		It("should fail validation for a short reason without touching state", func() {
			_, err := svc.Submit(ctx, staff.ID, leave.SubmitLeaveDTO{
				LeaveTypeID: earned.ID,
				FromDate:    monday,
				ToDate:      tuesday,
				Reason:      "too short",
			})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
			Expect(publisher.types()).To(BeEmpty())
		})
	})

	Describe("Decide", func() {
		It("should approve and deduct when the balance is sufficient", func() {
			seedBalance(staff, earned, 5)
			submitted, err := submit(staff, earned, monday, wednesday)
			Expect(err).NotTo(HaveOccurred())

			result, err := approve(manager.ID, employee.RoleManager, submitted.LeaveRequestID)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(approval.StatusApproved))
			Expect(result.Message).To(Equal("Leave approved by Arjun"))
			Expect(balanceOf(staff, earned)).To(Equal(2))
			expectTotalConsistent(staff)
			Expect(flowsOf(submitted.LeaveRequestID)[0].Remarks).To(Equal(approval.RemarkApprovedByManager))
		})

		It("should forward and then clamp on senior manager approval", func() {
			// Given an earned balance of 1 and a three day request
			seedBalance(staff, earned, 1)
			seedBalance(staff, sick, 4)
			submitted, err := submit(staff, earned, monday, wednesday)
			Expect(err).NotTo(HaveOccurred())
			Expect(submitted.Message).To(Equal("earned leave balance insufficient. Leave request forwarded to Manager Approval -> Senior Manager."))
			Expect(flowsOf(submitted.LeaveRequestID)).To(HaveLen(2))

			// When the manager approves
			forwarded, err := approve(manager.ID, employee.RoleManager, submitted.LeaveRequestID)

			// Then it moves to the senior manager without a deduction
			Expect(err).NotTo(HaveOccurred())
			Expect(forwarded.Status).To(Equal(approval.StatusPendingSeniorManager))
			Expect(forwarded.Message).To(Equal("Leave request forwarded to Senior Manager by Arjun"))
			Expect(*requestOf(submitted.LeaveRequestID).ApproverID).To(Equal(senior.ID))
			Expect(balanceOf(staff, earned)).To(Equal(1))

			// When the senior manager approves
			final, err := approve(senior.ID, employee.RoleSeniorManager, submitted.LeaveRequestID)

			// Then the balance clamps at zero and the total is recomputed
			Expect(err).NotTo(HaveOccurred())
			Expect(final.Status).To(Equal(approval.StatusApprovedSeniorManager))
			Expect(balanceOf(staff, earned)).To(Equal(0))
			expectTotalConsistent(staff)

			flows := flowsOf(submitted.LeaveRequestID)
			Expect(flows).To(HaveLen(2))
			Expect(flows[0].Remarks).To(Equal(approval.RemarkForwarded))
			Expect(flows[1].Status).To(Equal("APPROVED_SENIOR_MANAGER"))
			Expect(publisher.types()).To(Equal([]string{
				events.EventTypeLeaveSubmitted,
				events.EventTypeLeaveForwarded,
				events.EventTypeLeaveApproved,
			}))
		})

		It("should purge the pending escalation when the manager rejects", func() {
			seedBalance(staff, earned, 1)
			submitted, err := submit(staff, earned, monday, wednesday)
			Expect(err).NotTo(HaveOccurred())

			result, err := reject(manager.ID, employee.RoleManager, submitted.LeaveRequestID)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(approval.StatusRejected))
			Expect(result.Message).To(Equal("Leave request rejected by Arjun"))
			flows := flowsOf(submitted.LeaveRequestID)
			Expect(flows).To(HaveLen(1))
			Expect(flows[0].Status).To(Equal("REJECTED"))
			Expect(*requestOf(submitted.LeaveRequestID).RejectionReason).To(ContainSubstring("deadline"))
		})

		It("should record a senior manager rejection", func() {
			seedBalance(staff, earned, 1)
			submitted, err := submit(staff, earned, monday, wednesday)
			Expect(err).NotTo(HaveOccurred())
			_, err = approve(manager.ID, employee.RoleManager, submitted.LeaveRequestID)
			Expect(err).NotTo(HaveOccurred())

			result, err := reject(senior.ID, employee.RoleSeniorManager, submitted.LeaveRequestID)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(approval.StatusRejectedSeniorManager))
			Expect(balanceOf(staff, earned)).To(Equal(1))
		})

		It("should fail with NoSeniorManager when there is nobody to forward to", func() {
			manager.ManagerID = nil
			Expect(db.Model(manager).Update("manager_id", nil).Error).To(Succeed())
			seedBalance(staff, earned, 1)
			submitted, err := submit(staff, earned, monday, wednesday)
			Expect(err).NotTo(HaveOccurred())

			_, err = approve(manager.ID, employee.RoleManager, submitted.LeaveRequestID)

			Expect(errors.Is(err, internal.ErrNoSeniorManager)).To(BeTrue())
			Expect(requestOf(submitted.LeaveRequestID).Status).To(Equal("PENDING"))
		})

		It("should refuse roles that cannot decide", func() {
			_, err := approve(staff.ID, employee.RoleEmployee, 1)
			Expect(errors.Is(err, internal.ErrForbiddenRole)).To(BeTrue())
		})

		It("should refuse an approver the request is not assigned to", func() {
			seedBalance(staff, earned, 5)
			submitted, err := submit(staff, earned, monday, tuesday)
			Expect(err).NotTo(HaveOccurred())

			_, err = approve(senior.ID, employee.RoleSeniorManager, submitted.LeaveRequestID)

			Expect(errors.Is(err, internal.ErrNotAssignedApprover)).To(BeTrue())
		})

		It("should refuse a decision on a closed request", func() {
			seedBalance(staff, sick, 3)
			submitted, err := submit(staff, sick, monday, tuesday)
			Expect(err).NotTo(HaveOccurred())

			_, err = approve(manager.ID, employee.RoleManager, submitted.LeaveRequestID)

			Expect(errors.Is(err, internal.ErrInvalidTransition)).To(BeTrue())
		})

		It("should return not found for an unknown request", func() {
			_, err := approve(manager.ID, employee.RoleManager, 999)
			Expect(errors.Is(err, internal.ErrLeaveRequestNotFound)).To(BeTrue())
		})
	})

	Describe("Cancel", func() {
		It("should cancel a pending request and purge its trail", func() {
			// Given a pending request with two approval entries
			seedBalance(staff, earned, 1)
			submitted, err := submit(staff, earned, monday, wednesday)
			Expect(err).NotTo(HaveOccurred())

			// When the owner cancels it
			result, err := svc.Cancel(ctx, staff.ID, leave.CancelLeaveDTO{LeaveReqID: submitted.LeaveRequestID})

			// Then it is cancelled, the trail is gone and balances are unchanged
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(approval.StatusCancelled))
			Expect(result.Message).To(Equal(leave.MessageCancelled))
			Expect(requestOf(submitted.LeaveRequestID).Status).To(Equal("CANCELLED"))
			Expect(flowsOf(submitted.LeaveRequestID)).To(BeEmpty())
			Expect(balanceOf(staff, earned)).To(Equal(1))

			cancelled := publisher.last()
			Expect(cancelled.EventType()).To(Equal(events.EventTypeLeaveCancelled))
			Expect(cancelled.Trail).To(HaveLen(2))
		})

		It("should treat a second cancel as an invalid transition", func() {
			seedBalance(staff, earned, 5)
			submitted, err := submit(staff, earned, monday, tuesday)
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.Cancel(ctx, staff.ID, leave.CancelLeaveDTO{LeaveReqID: submitted.LeaveRequestID})
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Cancel(ctx, staff.ID, leave.CancelLeaveDTO{LeaveReqID: submitted.LeaveRequestID})

			Expect(errors.Is(err, internal.ErrInvalidTransition)).To(BeTrue())
		})

		It("should forbid cancelling someone else's request", func() {
			seedBalance(staff, earned, 5)
			submitted, err := submit(staff, earned, monday, tuesday)
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Cancel(ctx, manager.ID, leave.CancelLeaveDTO{LeaveReqID: submitted.LeaveRequestID})

			Expect(errors.Is(err, internal.ErrNotRequestOwner)).To(BeTrue())
			Expect(flowsOf(submitted.LeaveRequestID)).To(HaveLen(1))
		})
	})

	Describe("views", func() {
		It("should list history newest first with names", func() {
			seedBalance(staff, earned, 10)
			_, err := submit(staff, earned, monday, monday)
			Expect(err).NotTo(HaveOccurred())
			second, err := submit(staff, earned, tuesday, tuesday)
			Expect(err).NotTo(HaveOccurred())

			history, err := svc.History(ctx, staff.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(HaveLen(2))
			Expect(history[0].LeaveRequestID).To(Equal(second.LeaveRequestID))
			Expect(history[0].LeaveType).To(Equal(leavetype.EarnedLeave))
			Expect(history[0].EmployeeName).To(Equal("Ravi"))
			Expect(history[0].ApprovedBy).To(Equal("Arjun"))
		})

		It("should list pending requests for the assigned approver only", func() {
			seedBalance(staff, earned, 10)
			_, err := submit(staff, earned, monday, monday)
			Expect(err).NotTo(HaveOccurred())

			pending, err := svc.PendingFor(ctx, manager.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(HaveLen(1))

			none, err := svc.PendingFor(ctx, senior.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(none).To(BeEmpty())
		})

		It("should show the trail to the owner and approvers only", func() {
			seedBalance(staff, earned, 1)
			submitted, err := submit(staff, earned, monday, wednesday)
			Expect(err).NotTo(HaveOccurred())

			trail, err := svc.Track(ctx, staff.ID, submitted.LeaveRequestID)
			Expect(err).NotTo(HaveOccurred())
			Expect(trail).To(HaveLen(2))

			_, err = svc.Track(ctx, senior.ID, submitted.LeaveRequestID)
			Expect(err).NotTo(HaveOccurred())

			outsider := &employeeDatamodel.Employee{Name: "Kiran", Email: "kiran@example.com", Role: "EMPLOYEE"}
			Expect(db.Create(outsider).Error).To(Succeed())
			_, err = svc.Track(ctx, outsider.ID, submitted.LeaveRequestID)
			Expect(errors.Is(err, internal.ErrUnauthorizedAccess)).To(BeTrue())
		})
	})
})
