package approval

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/leave-management/internal"
)

type DecisionReader interface {
	DecisionsBy(ctx context.Context, approverID int64) ([]Decision, error)
}

type Service struct {
	decisions DecisionReader
	logger    *slog.Logger
}

func NewService(decisions DecisionReader, logger *slog.Logger) *Service {
	return &Service{
		decisions: decisions,
		logger:    logger,
	}
}

// DecisionsBy lists every entry the approver holds, newest first.
func (s *Service) DecisionsBy(ctx context.Context, approverID int64) ([]Decision, error) {
	decisions, err := s.decisions.DecisionsBy(ctx, approverID)
	if err != nil {
		s.logger.Error("failed to load approver decisions", "approver_id", approverID, "error", err)
		return nil, internal.NewInternalError("failed to load approved or rejected leaves", err)
	}
	return decisions, nil
}
