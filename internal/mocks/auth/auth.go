package auth

// Package auth contains simple hand-written test doubles for the auth
// ports. These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/crewdeck/crewdeck/internal/domain/auth"
	"github.com/crewdeck/crewdeck/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider          = (*MockAuthProvider)(nil)
	_ ports.PasswordAuthenticator = (*MockPasswordAuthenticator)(nil)
	_ ports.SessionStore          = (*MemorySessionStore)(nil)
	_ ports.ProfileStore          = (*MemoryProfileStore)(nil)
	_ ports.IdentityEvents        = (*MemoryIdentityEvents)(nil)
)

// MockAuthProvider simulates an IdP for tests with deterministic state and
// nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	AuthURL     string
	DefaultUser domainauth.Identity

	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL: "https://mock-idp/auth",
		DefaultUser: domainauth.Identity{
			UserID: "mock-user-1",
			Name:   "Mock User",
			Email:  "mock.user@example.com",
		},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}
	m.callCount++
	return m.AuthURL,
		fmt.Sprintf("state-%d", m.callCount),
		fmt.Sprintf("nonce-%d", m.callCount),
		nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}
	user := m.DefaultUser
	user.ExpiresAt = time.Now().Add(time.Hour)
	return user, nil
}

// MockPasswordAuthenticator verifies against a fixed credential table.
type MockPasswordAuthenticator struct {
	RegisterFunc     func(ctx context.Context, in ports.RegisterInput) (domainauth.Identity, error)
	AuthenticateFunc func(ctx context.Context, email, password string) (domainauth.Identity, error)

	// Users maps email to password for the default Authenticate behavior.
	Users map[string]string
}

func (m *MockPasswordAuthenticator) Register(ctx context.Context, in ports.RegisterInput) (domainauth.Identity, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, in)
	}
	return domainauth.Identity{UserID: "new-user", Name: in.Name, Email: in.Email}, nil
}

func (m *MockPasswordAuthenticator) Authenticate(ctx context.Context, email, password string) (domainauth.Identity, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, email, password)
	}
	if pw, ok := m.Users[email]; ok && pw == password {
		return domainauth.Identity{UserID: "user-" + email, Email: email}, nil
	}
	return domainauth.Identity{}, errors.New("invalid credentials")
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok || sess.Expired(time.Now()) {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// MemoryProfileStore serves profiles from a map, with optional forced
// errors.
type MemoryProfileStore struct {
	mu       sync.Mutex
	profiles map[string]domainauth.Profile
	// Err, when set, is returned by every FetchByID to simulate a
	// transient backend failure.
	Err error
}

// NewMemoryProfileStore creates an empty in-memory profile store.
func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[string]domainauth.Profile)}
}

// Put stores a profile.
func (m *MemoryProfileStore) Put(p domainauth.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = p
}

func (m *MemoryProfileStore) FetchByID(_ context.Context, id string) (domainauth.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return domainauth.Profile{}, m.Err
	}
	p, ok := m.profiles[id]
	if !ok {
		return domainauth.Profile{}, fmt.Errorf("profile %s: %w", id, ports.ErrProfileNotFound)
	}
	return p, nil
}

// MemoryIdentityEvents is a synchronous in-process event channel.
type MemoryIdentityEvents struct {
	mu       sync.Mutex
	handlers map[int]func(ports.IdentityEvent)
	next     int

	// Published records every event for assertions.
	Published []ports.IdentityEvent

	// Err, when set, is returned by Publish without recording the event.
	Err error
}

// NewMemoryIdentityEvents creates an empty event channel.
func NewMemoryIdentityEvents() *MemoryIdentityEvents {
	return &MemoryIdentityEvents{handlers: make(map[int]func(ports.IdentityEvent))}
}

func (m *MemoryIdentityEvents) Publish(_ context.Context, ev ports.IdentityEvent) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	m.Published = append(m.Published, ev)
	handlers := make([]func(ports.IdentityEvent), 0, len(m.handlers))
	for _, h := range m.handlers {
		handlers = append(handlers, h)
	}
	m.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
	return nil
}

func (m *MemoryIdentityEvents) Subscribe(_ context.Context, onEvent func(ports.IdentityEvent)) (ports.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.next
	m.next++
	m.handlers[id] = onEvent
	return &memorySubscription{events: m, id: id}, nil
}

// SubscriberCount reports how many live subscriptions exist.
func (m *MemoryIdentityEvents) SubscriberCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handlers)
}

type memorySubscription struct {
	events *MemoryIdentityEvents
	id     int
	once   sync.Once
}

func (s *memorySubscription) Unsubscribe() error {
	s.once.Do(func() {
		s.events.mu.Lock()
		defer s.events.mu.Unlock()
		delete(s.events.handlers, s.id)
	})
	return nil
}
