package repos

import (
	"gorm.io/gorm"

	"github.com/scoutlabs/venturescout-backend/internal/data/repos/discovery"
	"github.com/scoutlabs/venturescout-backend/internal/platform/logger"
)

type SessionRepo = discovery.SessionRepo
type SolutionRepo = discovery.SolutionRepo
type TagRepo = discovery.TagRepo
type DocumentRepo = discovery.DocumentRepo

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return discovery.NewSessionRepo(db, baseLog)
}

func NewSolutionRepo(db *gorm.DB, baseLog *logger.Logger) SolutionRepo {
	return discovery.NewSolutionRepo(db, baseLog)
}

func NewTagRepo(db *gorm.DB, baseLog *logger.Logger) TagRepo {
	return discovery.NewTagRepo(db, baseLog)
}

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	return discovery.NewDocumentRepo(db, baseLog)
}
