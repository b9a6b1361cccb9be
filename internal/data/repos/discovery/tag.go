package discovery

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/scoutlabs/venturescout-backend/internal/domain/discovery"
	"github.com/scoutlabs/venturescout-backend/internal/pkg/dbctx"
	"github.com/scoutlabs/venturescout-backend/internal/platform/logger"
)

const tagCacheSize = 1024

type TagRepo interface {
	Upsert(dbc dbctx.Context, name string, tagType string) (uuid.UUID, error)
	LinkSession(dbc dbctx.Context, sessionID uuid.UUID, tagIDs []uuid.UUID) error
	LinkSolution(dbc dbctx.Context, solutionID uuid.UUID, tagIDs []uuid.UUID) error
	ListForSession(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.Tag, error)
}

type tagRepo struct {
	db    *gorm.DB
	log   *logger.Logger
	cache *lru.Cache[string, uuid.UUID]
}

func NewTagRepo(db *gorm.DB, log *logger.Logger) TagRepo {
	cache, _ := lru.New[string, uuid.UUID](tagCacheSize)
	return &tagRepo{db: db, log: log.With("repo", "TagRepo"), cache: cache}
}

func (r *tagRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func cacheKey(name, tagType string) string {
	return tagType + "|" + strings.ToLower(name)
}

// Upsert returns the id of the tag with the given name and type, creating it
// if it does not exist. Names are stored as given but matched
// case-insensitively, and hot tags are served from an in-process LRU.
func (r *tagRepo) Upsert(dbc dbctx.Context, name string, tagType string) (uuid.UUID, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return uuid.Nil, fmt.Errorf("missing tag name")
	}
	if tagType != types.TagTypeProblem && tagType != types.TagTypeSolution {
		return uuid.Nil, fmt.Errorf("unknown tag type: %q", tagType)
	}

	key := cacheKey(name, tagType)
	if id, ok := r.cache.Get(key); ok {
		return id, nil
	}

	// Ids seen inside a caller's transaction never enter the cache: a later
	// rollback would leave it pointing at a tag row that does not exist.
	cacheable := dbc.Tx == nil

	txx := r.tx(dbc).WithContext(dbc.Ctx)

	var existing types.Tag
	err := txx.Where("LOWER(name) = LOWER(?) AND tag_type = ?", name, tagType).Take(&existing).Error
	if err == nil {
		if cacheable {
			r.cache.Add(key, existing.ID)
		}
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, err
	}

	row := &types.Tag{Name: name, TagType: tagType}
	if err := txx.Create(row).Error; err != nil {
		// Concurrent insert of the same tag loses the race on the unique
		// index. Re-read the winner instead of failing the request.
		if isUniqueViolation(err) {
			var won types.Tag
			if err2 := txx.Where("LOWER(name) = LOWER(?) AND tag_type = ?", name, tagType).Take(&won).Error; err2 == nil {
				if cacheable {
					r.cache.Add(key, won.ID)
				}
				return won.ID, nil
			}
		}
		return uuid.Nil, err
	}

	if cacheable {
		r.cache.Add(key, row.ID)
	}
	return row.ID, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

func (r *tagRepo) LinkSession(dbc dbctx.Context, sessionID uuid.UUID, tagIDs []uuid.UUID) error {
	if sessionID == uuid.Nil {
		return fmt.Errorf("missing session_id")
	}
	if len(tagIDs) == 0 {
		return nil
	}
	rows := make([]types.SessionTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		rows = append(rows, types.SessionTag{SessionID: sessionID, TagID: id})
	}
	return r.tx(dbc).WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r *tagRepo) LinkSolution(dbc dbctx.Context, solutionID uuid.UUID, tagIDs []uuid.UUID) error {
	if solutionID == uuid.Nil {
		return fmt.Errorf("missing solution_id")
	}
	if len(tagIDs) == 0 {
		return nil
	}
	rows := make([]types.SolutionTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		rows = append(rows, types.SolutionTag{SolutionID: solutionID, TagID: id})
	}
	return r.tx(dbc).WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r *tagRepo) ListForSession(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.Tag, error) {
	if sessionID == uuid.Nil {
		return nil, fmt.Errorf("missing session_id")
	}
	var out []*types.Tag
	err := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&types.Tag{}).
		Joins("JOIN session_tag st ON st.tag_id = tag.id").
		Where("st.session_id = ?", sessionID).
		Order("tag.name ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
