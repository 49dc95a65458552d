package leave_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/approval"
	"github.com/frahmantamala/leave-management/internal/employee"
	"github.com/frahmantamala/leave-management/internal/leave"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockLeaveService struct {
	submitErr    error
	decideErr    error
	lastEmployee int64
	lastRole     employee.Role
	lastSubmit   leave.SubmitLeaveDTO
	lastDecision leave.ChangeStatusDTO
}

func (m *mockLeaveService) Submit(_ context.Context, employeeID int64, dto leave.SubmitLeaveDTO) (*leave.SubmitResult, error) {
	m.lastEmployee = employeeID
	m.lastSubmit = dto
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	return &leave.SubmitResult{LeaveRequestID: 7, Status: approval.StatusPending, NumOfDays: 2, Message: "ok"}, nil
}

func (m *mockLeaveService) Decide(_ context.Context, approverID int64, role employee.Role, dto leave.ChangeStatusDTO) (*leave.DecisionResult, error) {
	m.lastEmployee = approverID
	m.lastRole = role
	m.lastDecision = dto
	if m.decideErr != nil {
		return nil, m.decideErr
	}
	return &leave.DecisionResult{LeaveRequestID: dto.LeaveReqID, Status: approval.StatusApproved, Message: "Leave approved by Arjun"}, nil
}

func (m *mockLeaveService) Cancel(_ context.Context, employeeID int64, dto leave.CancelLeaveDTO) (*leave.CancelResult, error) {
	m.lastEmployee = employeeID
	return &leave.CancelResult{LeaveRequestID: dto.LeaveReqID, Status: approval.StatusCancelled, Message: leave.MessageCancelled}, nil
}

func (m *mockLeaveService) History(_ context.Context, employeeID int64) ([]leave.RequestView, error) {
	m.lastEmployee = employeeID
	return []leave.RequestView{{LeaveRequestID: 1}}, nil
}

func (m *mockLeaveService) PendingFor(_ context.Context, approverID int64) ([]leave.RequestView, error) {
	m.lastEmployee = approverID
	return []leave.RequestView{}, nil
}

func (m *mockLeaveService) Track(_ context.Context, principalID, _ int64) ([]*approval.Entry, error) {
	m.lastEmployee = principalID
	return []*approval.Entry{{ID: 1, Status: approval.StatusPending}}, nil
}

func withParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func withPrincipal(r *http.Request, id int64, role employee.Role) *http.Request {
	ctx := internal.ContextWithEmployeeID(r.Context(), id)
	ctx = internal.ContextWithRole(ctx, role.String())
	return r.WithContext(ctx)
}

var _ = Describe("Handler", func() {
	var (
		svc     *mockLeaveService
		handler *leave.Handler
	)

	BeforeEach(func() {
		svc = &mockLeaveService{}
		handler = leave.NewHandler(svc)
	})

	It("should submit for the authenticated employee", func() {
		body := `{"leave_type_id":2,"from_date":"2026-03-02","to_date":"2026-03-03","reason":"attending a family wedding out of town"}`
		req := withPrincipal(httptest.NewRequest(http.MethodPost, "/leaves/request", strings.NewReader(body)), 3, employee.RoleEmployee)
		w := httptest.NewRecorder()

		handler.SubmitLeave(w, req)

		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(svc.lastEmployee).To(Equal(int64(3)))
		Expect(svc.lastSubmit.LeaveTypeID).To(Equal(int64(2)))

		var result leave.SubmitResult
		Expect(json.NewDecoder(w.Body).Decode(&result)).To(Succeed())
		Expect(result.LeaveRequestID).To(Equal(int64(7)))
	})

	It("should reject unknown fields in the body", func() {
		req := withPrincipal(httptest.NewRequest(http.MethodPost, "/leaves/request", strings.NewReader(`{"days":3}`)), 3, employee.RoleEmployee)
		w := httptest.NewRecorder()

		handler.SubmitLeave(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should return 401 without a principal", func() {
		req := httptest.NewRequest(http.MethodPost, "/leaves/request", strings.NewReader(`{}`))
		w := httptest.NewRecorder()

		handler.SubmitLeave(w, req)

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("should render domain errors with their status and code", func() {
		svc.submitErr = internal.ErrDuplicateRequest
		body := `{"leave_type_id":2,"from_date":"2026-03-02","to_date":"2026-03-03","reason":"attending a family wedding out of town"}`
		req := withPrincipal(httptest.NewRequest(http.MethodPost, "/leaves/request", strings.NewReader(body)), 3, employee.RoleEmployee)
		w := httptest.NewRecorder()

		handler.SubmitLeave(w, req)

		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(w.Body.String()).To(ContainSubstring(string(internal.ErrCodeDuplicateRequest)))
	})

	It("should pass the principal role to decisions", func() {
		body := `{"newStatus":"APPROVED","leave_req_id":11}`
		req := httptest.NewRequest(http.MethodPatch, "/leaves/status/2", strings.NewReader(body))
		req = withPrincipal(withParam(req, "emp_id", "2"), 2, employee.RoleManager)
		w := httptest.NewRecorder()

		handler.ChangeStatus(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(svc.lastRole).To(Equal(employee.RoleManager))
		Expect(svc.lastDecision.LeaveReqID).To(Equal(int64(11)))
	})

	It("should reject a non-numeric employee id", func() {
		req := withParam(httptest.NewRequest(http.MethodGet, "/leaves/user/abc", nil), "emp_id", "abc")
		w := httptest.NewRecorder()

		handler.GetHistory(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should cancel for the employee in the path", func() {
		req := withParam(httptest.NewRequest(http.MethodPost, "/leaves/cancel/3", strings.NewReader(`{"leave_req_id":5}`)), "emp_id", "3")
		w := httptest.NewRecorder()

		handler.CancelLeave(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(svc.lastEmployee).To(Equal(int64(3)))
		Expect(w.Body.String()).To(ContainSubstring(leave.MessageCancelled))
	})

	It("should track for the authenticated principal", func() {
		req := withPrincipal(withParam(httptest.NewRequest(http.MethodGet, "/leaves/track/5", nil), "leave_req_id", "5"), 3, employee.RoleEmployee)
		w := httptest.NewRecorder()

		handler.TrackLeave(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(svc.lastEmployee).To(Equal(int64(3)))
	})
})
