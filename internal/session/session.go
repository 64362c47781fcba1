package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/campus-resources/internal"
	"github.com/golang-jwt/jwt/v5"
)

// Persister is the storage port behind the token store.
type Persister interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

type EventKind string

const (
	EventSignedIn  EventKind = "signed_in"
	EventSignedOut EventKind = "signed_out"
)

type Event struct {
	Kind EventKind
	At   time.Time
}

// Store holds the bearer token shared by every resource client. Only the
// sign-in and sign-out flows write it; a 401 from the backend purges it.
type Store struct {
	mu          sync.RWMutex
	persister   Persister
	token       string
	now         func() time.Time
	logger      *slog.Logger
	subscribers map[int]func(Event)
	nextSubID   int
}

func NewStore(persister Persister, logger *slog.Logger) *Store {
	return &Store{
		persister:   persister,
		now:         time.Now,
		logger:      logger,
		subscribers: make(map[int]func(Event)),
	}
}

// WithClock overrides the time source used for expiry checks.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Init loads a previously persisted token.
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.persister.Load()
	if err != nil {
		return err
	}
	s.token = token
	s.logger.Debug("session store initialized", "signed_in", token != "")
	return nil
}

// Teardown drops subscribers. The persisted token is left in place.
func (s *Store) Teardown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subscribers = make(map[int]func(Event))
	return nil
}

// Token returns the current bearer token, failing fast when there is none
// or when its exp claim has passed.
func (s *Store) Token() (string, error) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token == "" {
		return "", internal.ErrMissingToken
	}
	if expiresAt, ok := ExpiresAt(token); ok && !s.now().Before(expiresAt) {
		return "", internal.ErrTokenExpired
	}
	return token, nil
}

func (s *Store) Save(token string) error {
	if token == "" {
		return errors.New("refusing to store an empty token")
	}

	s.mu.Lock()
	if err := s.persister.Save(token); err != nil {
		s.mu.Unlock()
		return err
	}
	s.token = token
	s.mu.Unlock()

	s.notify(Event{Kind: EventSignedIn, At: s.now()})
	return nil
}

// Purge forgets the token in memory and in storage.
func (s *Store) Purge() error {
	s.mu.Lock()
	hadToken := s.token != ""
	s.token = ""
	err := s.persister.Clear()
	s.mu.Unlock()

	if hadToken {
		s.logger.Info("session token purged")
		s.notify(Event{Kind: EventSignedOut, At: s.now()})
	}
	return err
}

// Subscribe registers fn for auth state changes and returns its cancel func.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(evt Event) {
	s.mu.RLock()
	subs := make([]func(Event), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(evt)
	}
}

// ExpiresAt reads the exp claim without verifying the signature. Opaque
// tokens report ok=false and are treated as non-expiring.
func ExpiresAt(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
