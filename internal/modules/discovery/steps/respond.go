package steps

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scoutlabs/venturescout-backend/internal/data/repos"
	types "github.com/scoutlabs/venturescout-backend/internal/domain/discovery"
	"github.com/scoutlabs/venturescout-backend/internal/pkg/dbctx"
	"github.com/scoutlabs/venturescout-backend/internal/platform/gemini"
	"github.com/scoutlabs/venturescout-backend/internal/platform/logger"
	"github.com/scoutlabs/venturescout-backend/internal/platform/modelcfg"
)

type RespondDeps struct {
	DB  *gorm.DB
	Log *logger.Logger
	AI  gemini.Client

	Tiers modelcfg.Tiers

	Sessions  repos.SessionRepo
	Solutions repos.SolutionRepo
	Tags      repos.TagRepo
	Documents repos.DocumentRepo
}

type RespondInput struct {
	// UserID is optional. Without it the turn is answered but nothing is
	// persisted.
	UserID uuid.UUID
	// SessionID links a document-generation turn back to a stored session.
	// Optional for anonymous or pre-suggestion turns.
	SessionID uuid.UUID
	Messages  []types.Turn
	Stream    Streamer
}

type RespondOutput struct {
	Phase      Phase
	Model      string
	Structured StructuredResponse
	Session    *types.DiscoverySession
	Documents  []*types.GeneratedDocument
}

// Respond answers one conversation turn end to end: normalize the
// transcript, classify the phase, compose the prompt, stream the model
// response, then structure and persist whatever the phase produced.
// Persistence problems are logged, not surfaced, because by then the client
// has already received the full response body.
func Respond(ctx context.Context, deps RespondDeps, in RespondInput) (RespondOutput, error) {
	transcript, err := NormalizeTranscript(in.Messages)
	if err != nil {
		return RespondOutput{}, err
	}

	cls := ClassifyPhase(transcript)
	prompt := ComposePrompt(cls.Phase, deps.Tiers)

	log := deps.Log.With("phase", string(cls.Phase), "user_turns", transcript.UserTurnCount())
	log.Info("dispatching turn to model", "candidates", prompt.Candidates)

	invoked, err := InvokeModel(ctx, InvokeDeps{Log: log, AI: deps.AI}, InvokeInput{
		Prompt:     prompt,
		Transcript: transcript,
		Stream:     in.Stream,
	})
	if err != nil {
		return RespondOutput{Phase: cls.Phase}, err
	}

	out := RespondOutput{
		Phase:      cls.Phase,
		Model:      invoked.Model,
		Structured: StructureResponse(invoked.Text),
	}

	switch cls.Phase {
	case PhaseSuggestion:
		if out.Structured.Suggestions == nil {
			log.Warn("suggestion phase produced no parseable payload, keeping raw text")
			return out, nil
		}
		if in.UserID == uuid.Nil {
			return out, nil
		}
		saved, err := SaveSession(ctx, PersistDeps{
			DB: deps.DB, Log: log,
			Sessions: deps.Sessions, Solutions: deps.Solutions,
			Tags: deps.Tags, Documents: deps.Documents,
		}, SaveSessionInput{
			UserID:     in.UserID,
			Transcript: transcript,
			Set:        out.Structured.Suggestions,
		})
		if err != nil {
			log.Error("failed to persist suggestion session", "error", err)
			return out, nil
		}
		out.Session = saved.Session

	case PhaseDocumentGeneration:
		if in.UserID == uuid.Nil || in.SessionID == uuid.Nil {
			return out, nil
		}
		if err := verifySessionOwner(ctx, deps, in.SessionID, in.UserID); err != nil {
			log.Warn("skipping persistence for foreign session", "session_id", in.SessionID, "error", err)
			return out, nil
		}
		docs, err := persistSelection(ctx, deps, log, in.SessionID, cls.Selection, out.Structured)
		if err != nil {
			log.Error("failed to persist generated documents", "error", err)
			return out, nil
		}
		out.Documents = docs
	}

	return out, nil
}

func persistSelection(ctx context.Context, deps RespondDeps, log *logger.Logger, sessionID uuid.UUID, position int, structured StructuredResponse) ([]*types.GeneratedDocument, error) {
	pdeps := PersistDeps{
		DB: deps.DB, Log: log,
		Sessions: deps.Sessions, Solutions: deps.Solutions,
		Tags: deps.Tags, Documents: deps.Documents,
	}

	selected, err := SelectSolution(ctx, pdeps, SelectSolutionInput{
		SessionID: sessionID,
		Position:  position,
	})
	if err != nil {
		return nil, fmt.Errorf("select solution: %w", err)
	}

	attached, err := AttachDocuments(ctx, pdeps, AttachDocumentsInput{
		SessionID:   sessionID,
		SolutionID:  selected.Solution.ID,
		PRD:         structured.PRD,
		LandingPage: structured.LandingPage,
	})
	if err != nil {
		return nil, fmt.Errorf("attach documents: %w", err)
	}
	return attached.Documents, nil
}

// verifySessionOwner guards session-scoped operations for authenticated
// callers.
func verifySessionOwner(ctx context.Context, deps RespondDeps, sessionID, userID uuid.UUID) error {
	sess, err := deps.Sessions.GetByID(dbctx.Context{Ctx: ctx}, sessionID)
	if err != nil {
		return err
	}
	if sess.UserID != userID {
		return fmt.Errorf("session does not belong to caller")
	}
	return nil
}
