package discovery

import (
	"context"

	"gorm.io/gorm"

	"github.com/scoutlabs/venturescout-backend/internal/data/repos"
	"github.com/scoutlabs/venturescout-backend/internal/modules/discovery/steps"
	"github.com/scoutlabs/venturescout-backend/internal/platform/gemini"
	"github.com/scoutlabs/venturescout-backend/internal/platform/logger"
	"github.com/scoutlabs/venturescout-backend/internal/platform/modelcfg"
)

type UsecasesDeps struct {
	DB  *gorm.DB
	Log *logger.Logger

	AI    gemini.Client
	Tiers modelcfg.Tiers

	Sessions  repos.SessionRepo
	Solutions repos.SolutionRepo
	Tags      repos.TagRepo
	Documents repos.DocumentRepo
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases { return Usecases{deps: deps} }

func (u Usecases) WithLog(log *logger.Logger) Usecases {
	u.deps.Log = log
	return u
}

type (
	RespondInput  = steps.RespondInput
	RespondOutput = steps.RespondOutput

	SaveSessionInput  = steps.SaveSessionInput
	SaveSessionOutput = steps.SaveSessionOutput

	SelectSolutionInput  = steps.SelectSolutionInput
	SelectSolutionOutput = steps.SelectSolutionOutput

	AttachDocumentsInput  = steps.AttachDocumentsInput
	AttachDocumentsOutput = steps.AttachDocumentsOutput
)

func (u Usecases) Respond(ctx context.Context, in RespondInput) (RespondOutput, error) {
	return steps.Respond(ctx, steps.RespondDeps{
		DB:        u.deps.DB,
		Log:       u.deps.Log,
		AI:        u.deps.AI,
		Tiers:     u.deps.Tiers,
		Sessions:  u.deps.Sessions,
		Solutions: u.deps.Solutions,
		Tags:      u.deps.Tags,
		Documents: u.deps.Documents,
	}, in)
}

func (u Usecases) SaveSession(ctx context.Context, in SaveSessionInput) (SaveSessionOutput, error) {
	return steps.SaveSession(ctx, u.persistDeps(), in)
}

func (u Usecases) SelectSolution(ctx context.Context, in SelectSolutionInput) (SelectSolutionOutput, error) {
	return steps.SelectSolution(ctx, u.persistDeps(), in)
}

func (u Usecases) AttachDocuments(ctx context.Context, in AttachDocumentsInput) (AttachDocumentsOutput, error) {
	return steps.AttachDocuments(ctx, u.persistDeps(), in)
}

func (u Usecases) persistDeps() steps.PersistDeps {
	return steps.PersistDeps{
		DB:        u.deps.DB,
		Log:       u.deps.Log,
		Sessions:  u.deps.Sessions,
		Solutions: u.deps.Solutions,
		Tags:      u.deps.Tags,
		Documents: u.deps.Documents,
	}
}
