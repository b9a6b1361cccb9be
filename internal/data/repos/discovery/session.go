package discovery

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/scoutlabs/venturescout-backend/internal/domain/discovery"
	"github.com/scoutlabs/venturescout-backend/internal/pkg/dbctx"
	"github.com/scoutlabs/venturescout-backend/internal/platform/logger"
)

type SessionRepo interface {
	Create(dbc dbctx.Context, row *types.DiscoverySession) (*types.DiscoverySession, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.DiscoverySession, error)
	ListRecent(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.DiscoverySession, error)
	SearchByTag(dbc dbctx.Context, userID uuid.UUID, tag string, limit int) ([]*types.DiscoverySession, error)
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, log *logger.Logger) SessionRepo {
	return &sessionRepo{db: db, log: log.With("repo", "SessionRepo")}
}

func (r *sessionRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *sessionRepo) Create(dbc dbctx.Context, row *types.DiscoverySession) (*types.DiscoverySession, error) {
	if row == nil {
		return nil, fmt.Errorf("missing session")
	}
	if row.UserID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	if err := r.tx(dbc).WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *sessionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.DiscoverySession, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	var out types.DiscoverySession
	err := r.tx(dbc).WithContext(dbc.Ctx).
		Preload("Solutions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id).
		Take(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *sessionRepo) ListRecent(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.DiscoverySession, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	q := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&types.DiscoverySession{}).
		Preload("Solutions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("created_at DESC").
		Limit(limit)
	if userID != uuid.Nil {
		q = q.Where("user_id = ?", userID)
	}
	var out []*types.DiscoverySession
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// SearchByTag matches sessions either by one of their own problem tags or by
// a tag of one of their solutions.
func (r *sessionRepo) SearchByTag(dbc dbctx.Context, userID uuid.UUID, tag string, limit int) ([]*types.DiscoverySession, error) {
	if tag == "" {
		return nil, fmt.Errorf("missing tag")
	}
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	sub := `id IN (
		SELECT st.session_id FROM session_tag st
			JOIN tag t ON t.id = st.tag_id
			WHERE LOWER(t.name) = LOWER(?)
		UNION
		SELECT s.session_id FROM solution s
			JOIN solution_tag slt ON slt.solution_id = s.id
			JOIN tag t2 ON t2.id = slt.tag_id
			WHERE LOWER(t2.name) = LOWER(?)
	)`
	q := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&types.DiscoverySession{}).
		Preload("Solutions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where(sub, tag, tag).
		Order("created_at DESC").
		Limit(limit)
	if userID != uuid.Nil {
		q = q.Where("user_id = ?", userID)
	}
	var out []*types.DiscoverySession
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
