package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anacreonhq/anacreon-backend/pkg/db/models"
	"github.com/anacreonhq/anacreon-backend/pkg/enums"
	"github.com/anacreonhq/anacreon-backend/pkg/logger"
	"github.com/anacreonhq/anacreon-backend/pkg/metrics"
	"github.com/anacreonhq/anacreon-backend/pkg/types"
)

// Entry describes one domain mutation to record.
type Entry struct {
	BusinessID uuid.UUID
	UserID     *uuid.UUID
	Action     enums.AuditAction
	Model      string
	ObjectID   uuid.UUID
	Details    types.JSONMap
}

// Recorder appends audit entries after domain mutations commit. A failed
// append never propagates to the caller: the mutation has already succeeded,
// so the failure is logged and counted instead.
type Recorder struct {
	repo    Repository
	log     *logger.Logger
	metrics *metrics.WorkflowMetrics
}

// NewRecorder wires an audit recorder with its repository and observability
// dependencies.
func NewRecorder(repo Repository, log *logger.Logger, m *metrics.WorkflowMetrics) (*Recorder, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if m == nil {
		return nil, fmt.Errorf("workflow metrics required")
	}
	return &Recorder{repo: repo, log: log, metrics: m}, nil
}

// Record appends one audit row. Call it after the owning transaction commits;
// recording inside the transaction would roll the mutation back on an audit
// failure, which inverts the durability contract.
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	r.record(ctx, r.repo, entry)
}

// RecordTx appends one audit row inside tx. Used when the caller wants the
// audit row to share the mutation's transaction, e.g. order deletion where
// the audited object disappears at commit.
func (r *Recorder) RecordTx(ctx context.Context, tx *gorm.DB, entry Entry) {
	r.record(ctx, r.repo.WithTx(tx), entry)
}

func (r *Recorder) record(ctx context.Context, repo Repository, entry Entry) {
	if entry.BusinessID == uuid.Nil || entry.ObjectID == uuid.Nil || entry.Model == "" || !entry.Action.IsValid() {
		r.metrics.IncAuditFailure()
		r.log.Warn(r.log.WithFields(ctx, map[string]any{
			"audit_model":  entry.Model,
			"audit_action": string(entry.Action),
		}), "dropping malformed audit entry")
		return
	}

	row := &models.AuditLog{
		BusinessID: entry.BusinessID,
		UserID:     entry.UserID,
		Action:     entry.Action,
		Model:      entry.Model,
		ObjectID:   entry.ObjectID,
		Details:    entry.Details,
	}
	if err := repo.Append(ctx, row); err != nil {
		r.metrics.IncAuditFailure()
		r.log.Error(r.log.WithFields(ctx, map[string]any{
			"audit_model":  entry.Model,
			"audit_action": string(entry.Action),
			"object_id":    entry.ObjectID.String(),
		}), "failed to append audit log", err)
		return
	}
	r.metrics.IncAuditAppend(entry.Model)
}
