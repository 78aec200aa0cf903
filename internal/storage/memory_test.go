package storage

import (
	"context"
	"errors"
	"testing"
)

func TestInMemoryStoreUserLifecycle(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	created, err := s.CreateUser(ctx, User{Email: "  Maker@Example.COM ", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if created.ID == "" {
		t.Error("CreateUser: id not assigned")
	}
	if created.Email != "maker@example.com" {
		t.Errorf("email: got %q, want normalized", created.Email)
	}
	if created.CreatedAt.IsZero() {
		t.Error("CreateUser: created_at not stamped")
	}

	byEmail, err := s.GetUserByEmail(ctx, "maker@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Errorf("GetUserByEmail: got %q, want %q", byEmail.ID, created.ID)
	}

	byID, err := s.GetUserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if byID.Email != created.Email {
		t.Errorf("GetUserByID: got %q", byID.Email)
	}
}

func TestInMemoryStoreDuplicateEmail(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, User{Email: "a@b.c"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := s.CreateUser(ctx, User{Email: "A@B.C"}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate: got %v, want ErrEmailTaken", err)
	}
}

func TestInMemoryStoreNotFound(t *testing.T) {
	s := NewInMemoryStore()
	if _, err := s.GetUserByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUserByID: got %v, want ErrNotFound", err)
	}
	if _, err := s.GetUserByEmail(context.Background(), "no@one.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUserByEmail: got %v, want ErrNotFound", err)
	}
}
