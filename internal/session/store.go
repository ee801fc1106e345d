// Package session keeps one dashboard controller per browser.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"momodash/internal/cache"
	"momodash/internal/dashboard"
	"momodash/internal/dom"
	"momodash/internal/log"
	"momodash/internal/metrics"
)

// CookieName carries the session id.
const CookieName = "momodash_session"

type Session struct {
	ID         string
	Controller *dashboard.Controller
	Created    time.Time
}

// PageFunc produces a fresh page document for a new session.
type PageFunc func() (*dom.Document, error)

type Config struct {
	TTL     time.Duration
	MaxSize int
	Page    PageFunc
	Backend dashboard.Backend
	// Dashboard is passed to every new controller.
	Dashboard dashboard.Options
	Metrics   metrics.Recorder
	Logger    *log.Logger
}

// Store holds live sessions, evicting idle and least recently used ones.
type Store struct {
	sessions *cache.LRUCache[*Session]
	page     PageFunc
	backend  dashboard.Backend
	opts     dashboard.Options
	metrics  metrics.Recorder
	logger   *log.Logger
}

func NewStore(cfg Config) *Store {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NoOp{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Discard()
	}
	s := &Store{
		sessions: cache.NewLRUCache[*Session](cfg.MaxSize, cfg.TTL),
		page:     cfg.Page,
		backend:  cfg.Backend,
		opts:     cfg.Dashboard,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger.WithComponent(log.ComponentSession),
	}
	s.sessions.OnEvict(func(id string, sess *Session) {
		s.metrics.SetActiveSessions(s.sessions.Size())
		s.logger.Debug("Session ended",
			log.FieldSessionID, id,
			log.FieldDuration, time.Since(sess.Created).Milliseconds())
	})
	return s
}

// Get returns a live session and extends its lifetime.
func (s *Store) Get(id string) (*Session, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	return s.sessions.Get(id)
}

// Start creates a session with a fresh page. A valid id is reused so a
// reload keeps its cookie; anything else gets a new one.
func (s *Store) Start(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	doc, err := s.page()
	if err != nil {
		return nil, fmt.Errorf("build page: %w", err)
	}

	sess := &Session{
		ID:         id,
		Controller: dashboard.New(doc, s.backend, s.opts),
		Created:    time.Now(),
	}
	s.sessions.Set(id, sess)
	s.metrics.SetActiveSessions(s.sessions.Size())
	s.logger.Debug("Session started", log.FieldSessionID, id)
	return sess, nil
}

// Delete drops a session.
func (s *Store) Delete(id string) {
	s.sessions.Delete(id)
}

func (s *Store) Size() int {
	return s.sessions.Size()
}

// CleanExpired drops idle sessions. It lets a cache.Manager sweep the store.
func (s *Store) CleanExpired() int {
	return s.sessions.CleanExpired()
}
