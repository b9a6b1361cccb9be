package discovery

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/scoutlabs/venturescout-backend/internal/domain/discovery"
	"github.com/scoutlabs/venturescout-backend/internal/pkg/dbctx"
	"github.com/scoutlabs/venturescout-backend/internal/platform/logger"
)

type SolutionRepo interface {
	Create(dbc dbctx.Context, rows []*types.Solution) ([]*types.Solution, error)
	GetByPosition(dbc dbctx.Context, sessionID uuid.UUID, position int) (*types.Solution, error)
	MarkSelected(dbc dbctx.Context, sessionID uuid.UUID, solutionID uuid.UUID) error
}

type solutionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSolutionRepo(db *gorm.DB, log *logger.Logger) SolutionRepo {
	return &solutionRepo{db: db, log: log.With("repo", "SolutionRepo")}
}

func (r *solutionRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *solutionRepo) Create(dbc dbctx.Context, rows []*types.Solution) ([]*types.Solution, error) {
	if len(rows) == 0 {
		return []*types.Solution{}, nil
	}
	if err := r.tx(dbc).WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *solutionRepo) GetByPosition(dbc dbctx.Context, sessionID uuid.UUID, position int) (*types.Solution, error) {
	if sessionID == uuid.Nil {
		return nil, fmt.Errorf("missing session_id")
	}
	if position < 1 || position > 3 {
		return nil, fmt.Errorf("position out of range: %d", position)
	}
	var out types.Solution
	err := r.tx(dbc).WithContext(dbc.Ctx).
		Where("session_id = ? AND position = ?", sessionID, position).
		Take(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkSelected flips the chosen solution on and every sibling off, so a
// session never carries two selections.
func (r *solutionRepo) MarkSelected(dbc dbctx.Context, sessionID uuid.UUID, solutionID uuid.UUID) error {
	if sessionID == uuid.Nil || solutionID == uuid.Nil {
		return fmt.Errorf("missing ids")
	}
	txx := r.tx(dbc).WithContext(dbc.Ctx)
	now := time.Now().UTC()
	if err := txx.Model(&types.Solution{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]interface{}{"is_selected": false, "updated_at": now}).Error; err != nil {
		return err
	}
	res := txx.Model(&types.Solution{}).
		Where("id = ? AND session_id = ?", solutionID, sessionID).
		Updates(map[string]interface{}{"is_selected": true, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
