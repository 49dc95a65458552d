package approval

import (
	"context"
	"fmt"

	"github.com/frahmantamala/leave-management/internal"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
)

type Repository interface {
	Append(ctx context.Context, entries []*leaveDatamodel.ApprovalFlow) error
	Find(ctx context.Context, requestID, approverID int64, status string) (*leaveDatamodel.ApprovalFlow, error)
	UpdateDecision(ctx context.Context, id int64, status, remarks string) error
	DeleteByRequest(ctx context.Context, requestID int64) (int64, error)
	DeleteByRequestAndStatus(ctx context.Context, requestID int64, status string) (int64, error)
	ListByRequest(ctx context.Context, requestID int64) ([]*leaveDatamodel.ApprovalFlow, error)
}

// Flow is the approval audit trail of leave requests. Mutations are only
// made by the leave state machine inside its transaction.
type Flow struct {
	repo Repository
}

func NewFlow(repo Repository) *Flow {
	return &Flow{repo: repo}
}

// Open records the entries a route creates on submission.
func (f *Flow) Open(ctx context.Context, requestID int64, steps []Step) ([]*Entry, error) {
	rows := make([]*leaveDatamodel.ApprovalFlow, 0, len(steps))
	for _, s := range steps {
		rows = append(rows, &leaveDatamodel.ApprovalFlow{
			LeaveRequestID: requestID,
			ApproverID:     s.ApproverID,
			Status:         s.Status.String(),
			Remarks:        s.Remarks,
		})
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if err := f.repo.Append(ctx, rows); err != nil {
		return nil, fmt.Errorf("append approval entries: %w", err)
	}

	entries := make([]*Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, EntryFromDataModel(row))
	}
	return entries, nil
}

// Decide moves the approver's entry at stage to result. It fails with
// ErrApprovalEntryNotFound when the approver has no entry at that stage.
func (f *Flow) Decide(ctx context.Context, requestID, approverID int64, stage, result Status, remarks string) (*Entry, error) {
	row, err := f.repo.Find(ctx, requestID, approverID, stage.String())
	if err != nil {
		return nil, fmt.Errorf("find approval entry: %w", err)
	}
	if row == nil {
		return nil, internal.ErrApprovalEntryNotFound
	}

	if err := f.repo.UpdateDecision(ctx, row.ID, result.String(), remarks); err != nil {
		return nil, fmt.Errorf("update approval entry: %w", err)
	}
	row.Status = result.String()
	row.Remarks = remarks
	return EntryFromDataModel(row), nil
}

// EnsureSeniorStep adds the senior manager's pending entry unless it was
// already created on submission.
func (f *Flow) EnsureSeniorStep(ctx context.Context, requestID, seniorID int64) error {
	row, err := f.repo.Find(ctx, requestID, seniorID, StatusPendingSeniorManager.String())
	if err != nil {
		return fmt.Errorf("find approval entry: %w", err)
	}
	if row != nil {
		return nil
	}
	_, err = f.Open(ctx, requestID, []Step{{
		ApproverID: seniorID,
		Status:     StatusPendingSeniorManager,
		Remarks:    RemarkPendingSeniorManager,
	}})
	return err
}

// DropEscalation removes the pending senior manager entry of a request the
// manager rejected.
func (f *Flow) DropEscalation(ctx context.Context, requestID int64) (int64, error) {
	n, err := f.repo.DeleteByRequestAndStatus(ctx, requestID, StatusPendingSeniorManager.String())
	if err != nil {
		return 0, fmt.Errorf("delete senior manager entry: %w", err)
	}
	return n, nil
}

// Purge deletes every entry of the request and returns what was deleted.
func (f *Flow) Purge(ctx context.Context, requestID int64) ([]*Entry, error) {
	trail, err := f.Trail(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if _, err := f.repo.DeleteByRequest(ctx, requestID); err != nil {
		return nil, fmt.Errorf("delete approval entries: %w", err)
	}
	return trail, nil
}

// Trail lists the entries of a request, oldest first.
func (f *Flow) Trail(ctx context.Context, requestID int64) ([]*Entry, error) {
	rows, err := f.repo.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("list approval entries: %w", err)
	}
	entries := make([]*Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, EntryFromDataModel(row))
	}
	return entries, nil
}
