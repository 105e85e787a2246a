package attempt

import (
	"context"
	"errors"
	"sync"

	"github.com/quizmaster-app/quiz-gateway/internal/utils"
)

// ErrNoActiveController is returned by Get when the session holds no
// live controller for the quiz.
var ErrNoActiveController = errors.New("no active attempt controller for this quiz")

// ClientFactory yields the upstream client bound to a session.
type ClientFactory func(sessionID string) UpstreamClient

// Manager holds at most one live Controller per (session, quiz) pair.
// A second start-or-resume for the same pair returns the existing
// controller instead of racing a duplicate against the upstream.
type Manager struct {
	clients ClientFactory
	clock   Clock
	logger  utils.Logger

	mu          sync.Mutex
	controllers map[string]*Controller
}

func NewManager(clients ClientFactory, clock Clock, logger utils.Logger) *Manager {
	if clock == nil {
		clock = RealClock()
	}
	return &Manager{
		clients:     clients,
		clock:       clock,
		logger:      logger,
		controllers: make(map[string]*Controller),
	}
}

func controllerKey(sessionID, quizID string) string {
	return sessionID + ":" + quizID
}

// StartOrResume returns the live controller for the pair, creating and
// starting one if needed. Start errors tear the fresh controller down so
// a retry gets a clean slate.
func (m *Manager) StartOrResume(ctx context.Context, sessionID, quizID string) (*Controller, error) {
	key := controllerKey(sessionID, quizID)

	m.mu.Lock()
	if ctrl, ok := m.controllers[key]; ok {
		m.mu.Unlock()
		return ctrl, nil
	}
	ctrl := NewController(m.clients(sessionID), quizID, m.clock, m.logger)
	m.controllers[key] = ctrl
	m.mu.Unlock()

	if err := ctrl.Start(ctx); err != nil {
		m.mu.Lock()
		delete(m.controllers, key)
		m.mu.Unlock()
		return nil, err
	}
	return ctrl, nil
}

// Get returns the live controller for the pair, if any.
func (m *Manager) Get(sessionID, quizID string) (*Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctrl, ok := m.controllers[controllerKey(sessionID, quizID)]
	if !ok {
		return nil, ErrNoActiveController
	}
	return ctrl, nil
}

// Release closes the controller for the pair and forgets it. Teardown
// semantics live in Controller.Close: an untouched attempt survives, an
// interacted one is abandoned.
func (m *Manager) Release(ctx context.Context, sessionID, quizID string) {
	key := controllerKey(sessionID, quizID)

	m.mu.Lock()
	ctrl, ok := m.controllers[key]
	delete(m.controllers, key)
	m.mu.Unlock()

	if ok {
		ctrl.Close(ctx)
	}
}

// CloseSession tears down every controller the session holds; called on
// logout and session invalidation.
func (m *Manager) CloseSession(ctx context.Context, sessionID string) {
	prefix := sessionID + ":"

	m.mu.Lock()
	var closing []*Controller
	for key, ctrl := range m.controllers {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			closing = append(closing, ctrl)
			delete(m.controllers, key)
		}
	}
	m.mu.Unlock()

	for _, ctrl := range closing {
		ctrl.Close(ctx)
	}

	if len(closing) > 0 {
		m.logger.Info("closed session controllers", "count", len(closing))
	}
}
