package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/scoutlabs/venturescout-backend/internal/domain/discovery"
)

func SeedSession(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID) *types.DiscoverySession {
	tb.Helper()
	s := &types.DiscoverySession{
		ID:                  uuid.New(),
		UserID:              userID,
		IntroSummary:        "A founder exploring scheduling pain for small clinics.",
		ConversationHistory: datatypes.JSON([]byte(`[]`)),
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return s
}

func SeedSolution(tb testing.TB, ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, position int) *types.Solution {
	tb.Helper()
	s := &types.Solution{
		ID:           uuid.New(),
		SessionID:    sessionID,
		Position:     position,
		Title:        "Clinic Scheduler",
		Summary:      "Automated appointment slotting for small clinics.",
		FeaturesCore: datatypes.JSON([]byte(`["Calendar Sync"]`)),
		FeaturesBase: datatypes.JSON([]byte(`["Email Reminders"]`)),
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed solution: %v", err)
	}
	return s
}

func SeedTag(tb testing.TB, ctx context.Context, tx *gorm.DB, name, tagType string) *types.Tag {
	tb.Helper()
	t := &types.Tag{ID: uuid.New(), Name: name, TagType: tagType}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed tag: %v", err)
	}
	return t
}
