package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	domainauth "github.com/crewdeck/crewdeck/internal/domain/auth"
	"github.com/crewdeck/crewdeck/internal/ports"
)

func TestMemorySessionStore_RoundTrip(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	sess := domainauth.Session{
		ID:        "s1",
		UserID:    "u1",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UserID != "u1" {
		t.Errorf("UserID = %q, want u1", got.UserID)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, ports.ErrSessionNotFound) {
		t.Errorf("Get after delete = %v, want ErrSessionNotFound", err)
	}
}

func TestMemorySessionStore_ExpiredSessionNotFound(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	_ = store.Save(ctx, domainauth.Session{
		ID:        "s1",
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, ports.ErrSessionNotFound) {
		t.Errorf("expired session should be not found, got %v", err)
	}
}

func TestMemoryProfileStore_NotFoundIsTagged(t *testing.T) {
	store := NewMemoryProfileStore()
	if _, err := store.FetchByID(context.Background(), "missing"); !errors.Is(err, ports.ErrProfileNotFound) {
		t.Errorf("want ErrProfileNotFound, got %v", err)
	}

	store.Put(domainauth.Profile{ID: "u1", Role: domainauth.RoleAdmin})
	p, err := store.FetchByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("FetchByID: %v", err)
	}
	if p.Role != domainauth.RoleAdmin {
		t.Errorf("Role = %q, want admin", p.Role)
	}
}

func TestMemoryIdentityEvents_UnsubscribeIdempotent(t *testing.T) {
	events := NewMemoryIdentityEvents()
	var received int
	sub, err := events.Subscribe(context.Background(), func(ports.IdentityEvent) { received++ })
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	_ = events.Publish(context.Background(), ports.IdentityEvent{Kind: ports.IdentityEventSignedIn})
	if received != 1 {
		t.Fatalf("received = %d, want 1", received)
	}

	if err := sub.Unsubscribe(); err != nil {
		t.Fatalf("Unsubscribe: %v", err)
	}
	if err := sub.Unsubscribe(); err != nil {
		t.Fatalf("second Unsubscribe: %v", err)
	}

	_ = events.Publish(context.Background(), ports.IdentityEvent{Kind: ports.IdentityEventSignedIn})
	if received != 1 {
		t.Errorf("received = %d after unsubscribe, want 1", received)
	}
	if events.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount = %d, want 0", events.SubscriberCount())
	}
}
