package service

import (
	"sync"
	"time"

	"vending-machine/internal/db"
	"vending-machine/internal/wallet"
	"vending-machine/pkg"

	"go.uber.org/zap"
)

// Sessions hands out one VendingService per browser session. All sessions
// share the machine, the wallet provider and the journal. A session unused
// for longer than idle is dropped.
type Sessions struct {
	machine  Machine
	provider wallet.Provider
	journal  db.Journal
	log      pkg.Logger
	idle     time.Duration
	now      func() time.Time

	mu        sync.Mutex
	byID      map[string]*sessionEntry
	lastSweep time.Time
}

type sessionEntry struct {
	svc      VendingService
	lastSeen time.Time
}

func NewSessions(machine Machine, provider wallet.Provider, journal db.Journal, log pkg.Logger, idle time.Duration) *Sessions {
	return &Sessions{
		machine:  machine,
		provider: provider,
		journal:  journal,
		log:      log,
		idle:     idle,
		now:      time.Now,
		byID:     make(map[string]*sessionEntry),
	}
}

func (s *Sessions) Get(id string) VendingService {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictIdle(now)

	entry, ok := s.byID[id]
	if !ok {
		entry = &sessionEntry{svc: NewVendingService(s.machine, s.provider, s.journal, s.log)}
		s.byID[id] = entry
		s.log.Info("Session started", zap.String("session", id))
	}
	entry.lastSeen = now
	return entry.svc
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// evictIdle runs at most once a minute. Caller holds s.mu.
func (s *Sessions) evictIdle(now time.Time) {
	if s.idle <= 0 || now.Sub(s.lastSweep) < time.Minute {
		return
	}
	s.lastSweep = now

	evicted := 0
	for id, entry := range s.byID {
		if now.Sub(entry.lastSeen) > s.idle {
			delete(s.byID, id)
			evicted++
		}
	}
	if evicted > 0 {
		s.log.Info("Idle sessions evicted", zap.Int("count", evicted), zap.Int("active", len(s.byID)))
	}
}
