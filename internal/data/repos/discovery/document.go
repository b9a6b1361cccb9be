package discovery

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/scoutlabs/venturescout-backend/internal/domain/discovery"
	"github.com/scoutlabs/venturescout-backend/internal/pkg/dbctx"
	"github.com/scoutlabs/venturescout-backend/internal/platform/logger"
)

type DocumentRepo interface {
	Create(dbc dbctx.Context, rows []*types.GeneratedDocument) ([]*types.GeneratedDocument, error)
	ListBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.GeneratedDocument, error)
}

type documentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentRepo(db *gorm.DB, log *logger.Logger) DocumentRepo {
	return &documentRepo{db: db, log: log.With("repo", "DocumentRepo")}
}

func (r *documentRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *documentRepo) Create(dbc dbctx.Context, rows []*types.GeneratedDocument) ([]*types.GeneratedDocument, error) {
	if len(rows) == 0 {
		return []*types.GeneratedDocument{}, nil
	}
	for _, row := range rows {
		if row.SessionID == uuid.Nil || row.SolutionID == uuid.Nil {
			return nil, fmt.Errorf("missing document parent ids")
		}
		if row.Kind != types.DocumentKindPRD && row.Kind != types.DocumentKindLandingPage {
			return nil, fmt.Errorf("unknown document kind: %q", row.Kind)
		}
	}
	if err := r.tx(dbc).WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *documentRepo) ListBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.GeneratedDocument, error) {
	if sessionID == uuid.Nil {
		return nil, fmt.Errorf("missing session_id")
	}
	var out []*types.GeneratedDocument
	err := r.tx(dbc).WithContext(dbc.Ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
