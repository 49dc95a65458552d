package postgres

import (
	"context"

	"github.com/frahmantamala/leave-management/internal/approval"
	"github.com/jmoiron/sqlx"
)

const decisionsByApproverQuery = `
SELECT
	lr.id            AS leave_req_id,
	lt.name          AS leave_type,
	e.id             AS emp_id,
	e.name           AS emp_name,
	lr.from_date     AS from_date,
	lr.to_date       AS to_date,
	lr.reason        AS reason,
	lr.status        AS status,
	af.status        AS approval_status,
	COALESCE(af.remarks, '') AS remarks,
	af.created_at    AS decided_at
FROM approval_flows af
JOIN leave_requests lr ON lr.id = af.leave_request_id
JOIN employees e ON e.id = lr.employee_id
JOIN leave_types lt ON lt.id = lr.leave_type_id
WHERE af.approver_id = $1
ORDER BY af.created_at DESC, af.id DESC`

// DecisionReader serves the team-decisions view straight from SQL.
type DecisionReader struct {
	db *sqlx.DB
}

func NewDecisionReader(db *sqlx.DB) *DecisionReader {
	return &DecisionReader{db: db}
}

func (r *DecisionReader) DecisionsBy(ctx context.Context, approverID int64) ([]approval.Decision, error) {
	decisions := []approval.Decision{}
	if err := r.db.SelectContext(ctx, &decisions, decisionsByApproverQuery, approverID); err != nil {
		return nil, err
	}
	return decisions, nil
}
