package chat

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/winnie-backend/internal/data/repos/testutil"
	types "github.com/yungbote/winnie-backend/internal/domain"
	"github.com/yungbote/winnie-backend/internal/nutrition"
)

func TestChatMessageRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewChatMessageRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "chat@example.com")
	other := testutil.SeedUser(t, ctx, tx, "other@example.com")

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, msg := range []string{"first", "second", "third"} {
		if _, err := repo.Create(ctx, tx, &types.ChatMessage{
			UserID:      u.ID,
			Message:     msg,
			Response:    "reply " + msg,
			Ingredients: []nutrition.IngredientCard{{Name: "Flax Seeds", Emoji: "🌾"}},
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if _, err := repo.Create(ctx, tx, &types.ChatMessage{UserID: other.ID, Message: "x", Response: "y"}); err != nil {
		t.Fatalf("Create other: %v", err)
	}

	got, err := repo.ListByUser(ctx, tx, u.ID, 2)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(got) != 2 || got[0].Message != "second" || got[1].Message != "third" {
		t.Fatalf("ListByUser order: %+v", got)
	}
	if len(got[1].Ingredients) != 1 || got[1].Ingredients[0].Name != "Flax Seeds" {
		t.Fatalf("ingredients not stored: %+v", got[1].Ingredients)
	}

	n, err := repo.DeleteByUser(ctx, tx, u.ID)
	if err != nil || n != 3 {
		t.Fatalf("DeleteByUser = %d, %v", n, err)
	}
	rest, err := repo.ListByUser(ctx, tx, other.ID, 0)
	if err != nil || len(rest) != 1 {
		t.Fatalf("other user's history affected: %d, %v", len(rest), err)
	}
}
