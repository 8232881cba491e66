package transcript

import (
	"context"
	"testing"

	"github.com/marketloop/negotiator/internal/model/negotiation"
)

func TestMemoryStoreAppendOrder(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Create(ctx, "s1"); err != nil {
		t.Fatalf("Create err: %v", err)
	}

	price := 70
	first := negotiation.NewTurn("s1", negotiation.RoleBuyer, "my offer is $70", negotiation.TurnOffer, &price)
	second := negotiation.NewTurn("s1", negotiation.RoleSeller, "let me think", negotiation.TurnText, nil)

	if err := store.Append(ctx, first); err != nil {
		t.Fatalf("Append err: %v", err)
	}
	if err := store.Append(ctx, second); err != nil {
		t.Fatalf("Append err: %v", err)
	}

	turns, err := store.List(ctx, "s1")
	if err != nil {
		t.Fatalf("List err: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("got %d turns, want 2", len(turns))
	}
	if turns[0].Sender != negotiation.RoleBuyer || turns[1].Sender != negotiation.RoleSeller {
		t.Fatal("turns returned out of append order")
	}
	if turns[0].Price == nil || *turns[0].Price != 70 {
		t.Fatalf("got price %v, want 70", turns[0].Price)
	}
}

func TestMemoryStoreCreateTwice(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Create(ctx, "s1"); err != nil {
		t.Fatalf("Create err: %v", err)
	}
	if err := store.Create(ctx, "s1"); err != ErrSessionExists {
		t.Fatalf("got %v, want ErrSessionExists", err)
	}
}

func TestMemoryStoreUnknownSession(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Append(ctx, negotiation.Turn{SessionID: "missing"}); err != ErrSessionNotFound {
		t.Fatalf("Append: got %v, want ErrSessionNotFound", err)
	}
	if _, err := store.List(ctx, "missing"); err != ErrSessionNotFound {
		t.Fatalf("List: got %v, want ErrSessionNotFound", err)
	}
}
