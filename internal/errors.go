package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal     ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidDate        ErrorCode = "INVALID_DATE"
	ErrCodeInvalidDateRange   ErrorCode = "INVALID_DATE_RANGE"
	ErrCodeInvalidFloaterDate ErrorCode = "INVALID_FLOATER_DATE"
	ErrCodeNonWorkingDaysOnly ErrorCode = "NON_WORKING_DAYS_ONLY"
	ErrCodeInvalidDecision    ErrorCode = "INVALID_DECISION"

	ErrCodeEmployeeNotFound       ErrorCode = "EMPLOYEE_NOT_FOUND"
	ErrCodeLeaveTypeNotFound      ErrorCode = "LEAVE_TYPE_NOT_FOUND"
	ErrCodeLeaveRequestNotFound   ErrorCode = "LEAVE_REQUEST_NOT_FOUND"
	ErrCodeApprovalEntryNotFound  ErrorCode = "APPROVAL_ENTRY_NOT_FOUND"
	ErrCodeLeaveBalanceNotFound   ErrorCode = "LEAVE_BALANCE_NOT_FOUND"
	ErrCodeForbiddenRole          ErrorCode = "FORBIDDEN_ROLE"
	ErrCodeNotAssignedApprover    ErrorCode = "NOT_ASSIGNED_APPROVER"
	ErrCodeNotRequestOwner        ErrorCode = "NOT_REQUEST_OWNER"
	ErrCodeDuplicateRequest       ErrorCode = "DUPLICATE_REQUEST"
	ErrCodeInsufficientBalance    ErrorCode = "INSUFFICIENT_BALANCE"
	ErrCodeNoApproverFound        ErrorCode = "NO_APPROVER_FOUND"
	ErrCodeNoSeniorManager        ErrorCode = "NO_SENIOR_MANAGER"
	ErrCodeInvalidTransition      ErrorCode = "INVALID_TRANSITION"
	ErrCodeJobAlreadyRunning      ErrorCode = "JOB_ALREADY_RUNNING"
	ErrCodeHolidayProviderFailure ErrorCode = "HOLIDAY_PROVIDER_FAILURE"

	ErrCodeUnauthorizedAccess ErrorCode = "UNAUTHORIZED_ACCESS"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeTooManyRequests    ErrorCode = "TOO_MANY_REQUESTS"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code so a copy with a different message or cause
// still satisfies errors.Is against the sentinel it was derived from.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// WithMessage returns a copy carrying a request-specific message. Sentinels
// are shared, so they are never mutated in place.
func (e *AppError) WithMessage(message string) *AppError {
	cp := *e
	cp.Message = message
	return &cp
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewExternalError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadGateway,
	}
}

func NewTooManyRequestsError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeTooManyRequests,
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
	}
}

var (
	ErrEmployeeNotFound      = NewNotFoundError("Employee not found", ErrCodeEmployeeNotFound)
	ErrLeaveTypeNotFound     = NewNotFoundError("Leave type not found", ErrCodeLeaveTypeNotFound)
	ErrLeaveRequestNotFound  = NewNotFoundError("Leave request not found", ErrCodeLeaveRequestNotFound)
	ErrApprovalEntryNotFound = NewNotFoundError("Approval flow record not found", ErrCodeApprovalEntryNotFound)
	ErrLeaveBalanceNotFound  = NewNotFoundError("Leave balance not found", ErrCodeLeaveBalanceNotFound)

	ErrInvalidFloaterDate  = NewValidationError("Floater leave can only be applied for certain dates. Kindly view floater holidays and apply.", ErrCodeInvalidFloaterDate)
	ErrNonWorkingDaysOnly  = NewValidationError("Leave cannot be applied for weekends or public holidays only.", ErrCodeNonWorkingDaysOnly)
	ErrInsufficientBalance = NewValidationError("Insufficient leave balance", ErrCodeInsufficientBalance)
	ErrNoApproverFound     = NewValidationError("No manager or senior manager found to approve the leave request.", ErrCodeNoApproverFound)
	ErrNoSeniorManager     = NewValidationError("Senior manager not found", ErrCodeNoSeniorManager)

	ErrForbiddenRole       = NewForbiddenError("Only managers or senior managers can approve/reject leaves.", ErrCodeForbiddenRole)
	ErrNotAssignedApprover = NewForbiddenError("You are not the assigned approver for this leave request", ErrCodeNotAssignedApprover)
	ErrNotRequestOwner     = NewForbiddenError("You are not authorized to cancel this leave", ErrCodeNotRequestOwner)
	ErrUnauthorizedAccess  = NewForbiddenError("Unauthorized access to this resource", ErrCodeUnauthorizedAccess)

	ErrDuplicateRequest  = NewConflictError("Leave already exists for the selected date range.", ErrCodeDuplicateRequest)
	ErrInvalidTransition = NewConflictError("Leave request is not in a state that allows this action", ErrCodeInvalidTransition)
	ErrJobAlreadyRunning = NewConflictError("Balance job is already running on another instance", ErrCodeJobAlreadyRunning)

	ErrInvalidToken = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)

	ErrHolidayProviderFailure = NewExternalError("Failed to fetch public holidays", ErrCodeHolidayProviderFailure)
	ErrTooManyRequests        = NewTooManyRequestsError("Too many requests, please slow down")
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
