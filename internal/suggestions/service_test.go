package suggestions

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestCreateDefaultsAndStatus(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}

	sg, err := svc.Create(context.Background(), "u1", "", "Poderiam adicionar exportação para CSV")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sg.Category != "other" {
		t.Fatalf("expected default category other, got %q", sg.Category)
	}
	if sg.Status != StatusNew {
		t.Fatalf("expected status new, got %q", sg.Status)
	}
	if sg.ID == "" {
		t.Fatal("expected generated id")
	}
}

func TestCreateValidation(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}
	ctx := context.Background()

	if _, err := svc.Create(ctx, "u1", "bogus", "msg"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad category, got %v", err)
	}
	if _, err := svc.Create(ctx, "u1", "bug", "   "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty message, got %v", err)
	}
}

func TestCreateTruncatesLongMessage(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}

	sg, err := svc.Create(context.Background(), "u1", "feature", strings.Repeat("á", maxMessageLen+50))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := len([]rune(sg.Message)); got != maxMessageLen {
		t.Fatalf("expected message truncated to %d runes, got %d", maxMessageLen, got)
	}
}

func TestListOwnerScoped(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo}
	ctx := context.Background()

	if _, err := svc.Create(ctx, "u1", "bug", "primeira"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, "u2", "ux", "outra"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	sgs, err := svc.List(ctx, "u1", 20, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(sgs) != 1 || sgs[0].Message != "primeira" {
		t.Fatalf("unexpected list for u1: %+v", sgs)
	}
}

func TestDeleteOwnerScoped(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo}
	ctx := context.Background()

	sg, err := svc.Create(ctx, "u1", "report", "relatório truncado")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(ctx, "u2", sg.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other owner, got %v", err)
	}
	if err := svc.Delete(ctx, "u1", sg.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, "u1", sg.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
