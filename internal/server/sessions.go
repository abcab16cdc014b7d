package server

import (
	"context"
	"sync"
	"time"

	"business-directory/internal/common/logger"
	"business-directory/internal/common/metrics"
	"business-directory/internal/models"
	"business-directory/internal/panel"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

const sessionCookie = "dashboard_session"

// RouterFactory builds the panel router for a new dashboard session.
type RouterFactory func(ctx context.Context) (*panel.Router, error)

type session struct {
	models.DashboardSession
	router *panel.Router
}

// SessionStore keeps one panel router per open dashboard and evicts idle ones.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	factory  RouterFactory
	logger   logger.Logger
	now      func() time.Time
	cron     *cron.Cron
}

func NewSessionStore(ttl time.Duration, factory RouterFactory, log logger.Logger) *SessionStore {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &SessionStore{
		sessions: make(map[string]*session),
		ttl:      ttl,
		factory:  factory,
		logger:   log.WithFields(map[string]interface{}{"component": "sessions"}),
		now:      time.Now,
	}
}

// Acquire returns the router for id, creating a session when id is unknown or expired.
// The returned id differs from the argument when a new session was created.
func (s *SessionStore) Acquire(ctx context.Context, id string) (string, *panel.Router, error) {
	now := s.now()
	s.mu.Lock()
	if sess, ok := s.sessions[id]; ok && !sess.IsExpired(now, s.ttl) {
		sess.UpdateActivity(now)
		s.mu.Unlock()
		return id, sess.router, nil
	}
	s.mu.Unlock()

	router, err := s.factory(ctx)
	if err != nil {
		return "", nil, err
	}
	sess := &session{
		DashboardSession: models.DashboardSession{ID: uuid.New().String(), CreatedAt: now, LastActivity: now},
		router:           router,
	}

	s.mu.Lock()
	if id != "" {
		delete(s.sessions, id)
	}
	s.sessions[sess.ID] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	s.logger.Debug("dashboard session opened", map[string]interface{}{"sessionId": sess.ID})
	return sess.ID, router, nil
}

// Evict removes sessions idle longer than the TTL and returns how many were dropped.
func (s *SessionStore) Evict() int {
	now := s.now()
	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.IsExpired(now, s.ttl) {
			delete(s.sessions, id)
			removed++
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	if removed > 0 {
		s.logger.Info("idle dashboard sessions evicted", map[string]interface{}{"evicted": removed, "active": n})
	}
	return removed
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// StartEviction runs Evict on the given cron spec until Stop.
func (s *SessionStore) StartEviction(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { s.Evict() }); err != nil {
		return err
	}
	s.mu.Lock()
	s.cron = c
	s.mu.Unlock()
	c.Start()
	return nil
}

// Stop halts the eviction schedule and waits for a running pass.
func (s *SessionStore) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}
