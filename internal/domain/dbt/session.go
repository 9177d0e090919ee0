package dbt

import (
	"sync"

	"github.com/google/uuid"
	"github.com/lightdash/lightdash-cli/internal/ports"
)

// Session carries the state that must survive repeated resolutions within
// one CLI process: whether the operator already accepted a fallback, and
// the progress indicator to pause while prompting. Create one per process
// and pass it to every Resolve call.
type Session struct {
	id string

	mu           sync.Mutex
	acknowledged bool
	progress     ports.Progress
	lc           *lifecycle
}

// NewSession creates a session with the fallback not yet acknowledged.
func NewSession() *Session {
	return &Session{id: uuid.NewString()}
}

// ID identifies the session in log output.
func (s *Session) ID() string {
	return s.id
}

// FallbackAcknowledged reports whether an unsupported version was already
// accepted in this session. Once true it stays true.
func (s *Session) FallbackAcknowledged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acknowledged
}

func (s *Session) acknowledgeFallback() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acknowledged = true
}

// SetActiveProgress registers the indicator currently shown to the
// operator; nil clears it.
func (s *Session) SetActiveProgress(p ports.Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = p
}

// ActiveProgress returns the registered indicator, or nil.
func (s *Session) ActiveProgress() ports.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Phase returns the phase the last resolution reached, or PhaseDetecting
// before the first one.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	lc := s.lc
	s.mu.Unlock()
	if lc == nil {
		return PhaseDetecting
	}
	return lc.phase()
}

func (s *Session) machine() (*lifecycle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lc == nil {
		lc, err := newLifecycle()
		if err != nil {
			return nil, err
		}
		s.lc = lc
	}
	return s.lc, nil
}
