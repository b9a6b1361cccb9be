package steps

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/scoutlabs/venturescout-backend/internal/data/repos"
	types "github.com/scoutlabs/venturescout-backend/internal/domain/discovery"
	"github.com/scoutlabs/venturescout-backend/internal/pkg/dbctx"
	"github.com/scoutlabs/venturescout-backend/internal/platform/logger"
)

type PersistDeps struct {
	DB  *gorm.DB
	Log *logger.Logger

	Sessions  repos.SessionRepo
	Solutions repos.SolutionRepo
	Tags      repos.TagRepo
	Documents repos.DocumentRepo
}

type SaveSessionInput struct {
	UserID     uuid.UUID
	Transcript Transcript
	Set        *types.SuggestionSet
}

type SaveSessionOutput struct {
	Session *types.DiscoverySession
}

// SaveSession persists a freshly structured suggestion set: the session row
// with its transcript snapshot, the three solutions, and every problem and
// solution tag, all in one transaction.
func SaveSession(ctx context.Context, deps PersistDeps, in SaveSessionInput) (SaveSessionOutput, error) {
	if in.Set == nil {
		return SaveSessionOutput{}, fmt.Errorf("missing suggestion set")
	}
	if len(in.Set.Suggestions) != 3 {
		return SaveSessionOutput{}, fmt.Errorf("expected 3 suggestions, got %d", len(in.Set.Suggestions))
	}
	if in.UserID == uuid.Nil {
		return SaveSessionOutput{}, fmt.Errorf("missing user id")
	}

	historyTurns := append(append([]types.Turn{}, in.Transcript.History...), types.Turn{
		Speaker: types.SpeakerUser,
		Text:    in.Transcript.Current,
	})
	historyJSON, err := json.Marshal(historyTurns)
	if err != nil {
		return SaveSessionOutput{}, fmt.Errorf("marshal history: %w", err)
	}

	var session *types.DiscoverySession
	err = deps.DB.Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		session, err = deps.Sessions.Create(dbc, &types.DiscoverySession{
			UserID:              in.UserID,
			IntroSummary:        in.Set.Intro,
			ConversationHistory: datatypes.JSON(historyJSON),
		})
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}

		problemTagIDs, err := upsertTags(dbc, deps.Tags, in.Set.ProblemTags, types.TagTypeProblem)
		if err != nil {
			return err
		}
		if err := deps.Tags.LinkSession(dbc, session.ID, problemTagIDs); err != nil {
			return fmt.Errorf("link session tags: %w", err)
		}

		for i, sug := range in.Set.Suggestions {
			coreJSON, err := json.Marshal(sug.Fields.FeatureList.Core)
			if err != nil {
				return fmt.Errorf("marshal core features: %w", err)
			}
			baseJSON, err := json.Marshal(sug.Fields.FeatureList.Base)
			if err != nil {
				return fmt.Errorf("marshal base features: %w", err)
			}

			created, err := deps.Solutions.Create(dbc, []*types.Solution{{
				SessionID:            session.ID,
				Position:             i + 1,
				Title:                sug.Title,
				Summary:              sug.Summary,
				Pain:                 sug.Fields.Pain,
				SolutionDescription:  sug.Fields.Solution,
				IdealCustomerProfile: sug.Fields.IdealCustomerProfile,
				BusinessModelPricing: sug.Fields.BusinessModelPricing,
				GoToMarketPlan:       sug.Fields.GoToMarketPlan,
				CurrentSolutions:     sug.Fields.CurrentSolutions,
				TenXOpportunity:      sug.Fields.TenXOpportunity,
				FeaturesCore:         datatypes.JSON(coreJSON),
				FeaturesBase:         datatypes.JSON(baseJSON),
			}})
			if err != nil {
				return fmt.Errorf("create solution %d: %w", i+1, err)
			}

			solutionTagIDs, err := upsertTags(dbc, deps.Tags, sug.Tags, types.TagTypeSolution)
			if err != nil {
				return err
			}
			if err := deps.Tags.LinkSolution(dbc, created[0].ID, solutionTagIDs); err != nil {
				return fmt.Errorf("link solution tags: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return SaveSessionOutput{}, err
	}

	return SaveSessionOutput{Session: session}, nil
}

func upsertTags(dbc dbctx.Context, tags repos.TagRepo, names []string, tagType string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(names))
	for _, name := range names {
		id, err := tags.Upsert(dbc, name, tagType)
		if err != nil {
			return nil, fmt.Errorf("upsert tag %q: %w", name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

type SelectSolutionInput struct {
	SessionID uuid.UUID
	Position  int
}

type SelectSolutionOutput struct {
	Solution *types.Solution
}

// SelectSolution marks the solution at the given position as the one the
// founder chose.
func SelectSolution(ctx context.Context, deps PersistDeps, in SelectSolutionInput) (SelectSolutionOutput, error) {
	var solution *types.Solution
	err := deps.DB.Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		var err error
		solution, err = deps.Solutions.GetByPosition(dbc, in.SessionID, in.Position)
		if err != nil {
			return fmt.Errorf("load solution: %w", err)
		}
		if err := deps.Solutions.MarkSelected(dbc, in.SessionID, solution.ID); err != nil {
			return fmt.Errorf("mark selected: %w", err)
		}
		solution.IsSelected = true
		return nil
	})
	if err != nil {
		return SelectSolutionOutput{}, err
	}
	return SelectSolutionOutput{Solution: solution}, nil
}

type AttachDocumentsInput struct {
	SessionID   uuid.UUID
	SolutionID  uuid.UUID
	PRD         string
	LandingPage string
}

type AttachDocumentsOutput struct {
	Documents []*types.GeneratedDocument
}

// AttachDocuments stores the extracted documents against the selected
// solution. Either document may be absent when extraction fell back to raw
// display; attaching nothing is not an error.
func AttachDocuments(ctx context.Context, deps PersistDeps, in AttachDocumentsInput) (AttachDocumentsOutput, error) {
	var rows []*types.GeneratedDocument
	if in.PRD != "" {
		rows = append(rows, &types.GeneratedDocument{
			SessionID:  in.SessionID,
			SolutionID: in.SolutionID,
			Kind:       types.DocumentKindPRD,
			Content:    in.PRD,
		})
	}
	if in.LandingPage != "" {
		rows = append(rows, &types.GeneratedDocument{
			SessionID:  in.SessionID,
			SolutionID: in.SolutionID,
			Kind:       types.DocumentKindLandingPage,
			Content:    in.LandingPage,
		})
	}
	if len(rows) == 0 {
		return AttachDocumentsOutput{}, nil
	}

	var created []*types.GeneratedDocument
	err := deps.DB.Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		var err error
		created, err = deps.Documents.Create(dbc, rows)
		return err
	})
	if err != nil {
		return AttachDocumentsOutput{}, err
	}
	return AttachDocumentsOutput{Documents: created}, nil
}
