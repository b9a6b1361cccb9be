package discovery

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/scoutlabs/venturescout-backend/internal/data/repos/testutil"
	types "github.com/scoutlabs/venturescout-backend/internal/domain/discovery"
	"github.com/scoutlabs/venturescout-backend/internal/pkg/dbctx"
)

func TestSolutionRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewSolutionRepo(db, testutil.Logger(t))

	sess := testutil.SeedSession(t, ctx, tx, uuid.New())

	rows := []*types.Solution{
		{SessionID: sess.ID, Position: 1, Title: "One", FeaturesCore: datatypes.JSON([]byte(`[]`)), FeaturesBase: datatypes.JSON([]byte(`[]`))},
		{SessionID: sess.ID, Position: 2, Title: "Two", FeaturesCore: datatypes.JSON([]byte(`[]`)), FeaturesBase: datatypes.JSON([]byte(`[]`))},
		{SessionID: sess.ID, Position: 3, Title: "Three", FeaturesCore: datatypes.JSON([]byte(`[]`)), FeaturesBase: datatypes.JSON([]byte(`[]`))},
	}
	created, err := repo.Create(dbc, rows)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, row := range created {
		if row.ID == uuid.Nil {
			t.Fatalf("Create did not assign ids")
		}
	}

	got, err := repo.GetByPosition(dbc, sess.ID, 2)
	if err != nil {
		t.Fatalf("GetByPosition: %v", err)
	}
	if got.Title != "Two" {
		t.Fatalf("GetByPosition: got %q want %q", got.Title, "Two")
	}
	if _, err := repo.GetByPosition(dbc, sess.ID, 4); err == nil {
		t.Fatalf("GetByPosition should reject positions outside 1..3")
	}

	if err := repo.MarkSelected(dbc, sess.ID, created[1].ID); err != nil {
		t.Fatalf("MarkSelected: %v", err)
	}
	if err := repo.MarkSelected(dbc, sess.ID, created[2].ID); err != nil {
		t.Fatalf("MarkSelected again: %v", err)
	}

	var selected []types.Solution
	if err := tx.WithContext(ctx).Where("session_id = ? AND is_selected = ?", sess.ID, true).Find(&selected).Error; err != nil {
		t.Fatalf("load selected: %v", err)
	}
	if len(selected) != 1 || selected[0].ID != created[2].ID {
		t.Fatalf("exactly one solution should stay selected, got %d", len(selected))
	}

	err = repo.MarkSelected(dbc, sess.ID, uuid.New())
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("MarkSelected unknown solution: got %v want ErrRecordNotFound", err)
	}
}
