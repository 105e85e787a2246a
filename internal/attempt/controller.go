package attempt

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/quizmaster-app/quiz-gateway/internal/api"
	"github.com/quizmaster-app/quiz-gateway/internal/models"
	"github.com/quizmaster-app/quiz-gateway/internal/utils"
)

// State is the controller's lifecycle position. Status transitions on
// the attempt itself are monotonic: IN_PROGRESS moves to COMPLETED or
// ABANDONED exactly once and never back.
type State string

const (
	StateLoading    State = "LOADING"
	StateReady      State = "READY"
	StateSubmitting State = "SUBMITTING"
	StateAbandoning State = "ABANDONING"
	StateCompleted  State = "COMPLETED"
	StateAbandoned  State = "ABANDONED"
	StateError      State = "ERROR"
)

func (s State) terminal() bool {
	return s == StateCompleted || s == StateAbandoned
}

// expiryCommitTimeout bounds the network call fired by the countdown
// goroutine, which has no request context to inherit.
const expiryCommitTimeout = 10 * time.Second

// UpstreamClient is the slice of the API client the controller needs.
type UpstreamClient interface {
	StartAttempt(ctx context.Context, quizID string) (*models.StartAttemptResponse, error)
	ResumeAttempt(ctx context.Context, quizID string) (*models.StartAttemptResponse, error)
	SubmitAttempt(ctx context.Context, attemptID string, answers []models.AnswerSubmission) (*models.QuizResult, error)
	EndAttempt(ctx context.Context, quizID string, reason models.AbandonReason) error
}

// Controller drives one learner's interaction with one quiz attempt:
// start or resume, answer buffering, countdown, submit, abandon. All
// methods are safe for concurrent use; a transition-attempting call that
// loses a race observes the terminal status and no-ops.
type Controller struct {
	client UpstreamClient
	logger utils.Logger
	clock  Clock

	quizID string

	mu      sync.Mutex
	state   State
	lastErr string

	attempt models.QuizAttempt
	quiz    models.Quiz

	// answers is the client-local buffer: question ID to selected
	// option IDs, in selection order.
	answers map[string][]string
	index   int

	hasInteracted  bool
	commitInFlight bool
	abandonFired   bool

	deadline time.Time
	stopTick chan struct{}

	result *models.QuizResult
}

func NewController(client UpstreamClient, quizID string, clock Clock, logger utils.Logger) *Controller {
	if clock == nil {
		clock = RealClock()
	}
	return &Controller{
		client:  client,
		logger:  logger,
		clock:   clock,
		quizID:  strings.TrimSpace(quizID),
		state:   StateLoading,
		answers: make(map[string][]string),
	}
}

// ===== START / RESUME =====

// Start performs the start-or-resume handshake. Invalid quiz IDs fail
// before any network call. A resumed COMPLETED attempt returns
// ErrAlreadyCompleted so the caller can route to results; a resumed
// ABANDONED attempt returns ErrAttemptAbandoned.
func (c *Controller) Start(ctx context.Context) error {
	if _, err := strconv.ParseInt(c.quizID, 10, 64); err != nil {
		c.fail("quiz not found")
		return fmt.Errorf("%w: %q", api.ErrQuizNotFound, c.quizID)
	}

	resp, err := c.client.StartAttempt(ctx, c.quizID)
	if err != nil && api.IsActiveAttemptConflict(err) {
		// An in-progress attempt already exists; pick it up instead.
		resp, err = c.client.ResumeAttempt(ctx, c.quizID)
	}
	if err != nil {
		c.fail(err.Error())
		return err
	}

	c.mu.Lock()
	c.attempt = resp.Attempt
	c.quiz = resp.Quiz

	switch resp.Attempt.Status {
	case models.AttemptCompleted:
		c.state = StateCompleted
		c.mu.Unlock()
		return ErrAlreadyCompleted
	case models.AttemptAbandoned:
		c.state = StateError
		c.lastErr = ErrAttemptAbandoned.Error()
		c.mu.Unlock()
		return ErrAttemptAbandoned
	}

	// Rehydrate the buffer from any answers persisted before a reload.
	for _, saved := range resp.Attempt.Answers {
		if len(saved.SelectedOptionIDs) > 0 {
			c.answers[saved.QuestionID] = append([]string(nil), saved.SelectedOptionIDs...)
		}
	}

	// Remaining time is reconstructed from the server's startedAt, never
	// from a client-held countdown, so reloads stay honest.
	limit := time.Duration(c.quiz.TimeLimitMinutes) * time.Minute
	c.deadline = resp.Attempt.StartedAt.Add(limit)
	c.state = StateReady
	c.stopTick = make(chan struct{})
	c.mu.Unlock()

	go c.runCountdown()

	c.logger.Info("attempt ready",
		"attempt_id", resp.Attempt.ID,
		"quiz_id", c.quizID,
		"remaining_seconds", c.RemainingSeconds())
	return nil
}

func (c *Controller) fail(msg string) {
	c.mu.Lock()
	c.state = StateError
	c.lastErr = msg
	c.mu.Unlock()
}

// ===== ANSWER BUFFER =====

// Select records a selection. No-op unless the attempt is IN_PROGRESS.
// Single-select questions replace the buffered option; multi-select
// toggles membership up to the question's cap, silently ignoring
// attempts to exceed it.
func (c *Controller) Select(questionID, optionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateReady || c.attempt.Status != models.AttemptInProgress {
		return
	}

	question, ok := c.findQuestion(questionID)
	if !ok || !c.hasOption(question, optionID) {
		return
	}
	c.hasInteracted = true

	current := c.answers[questionID]
	if !question.IsMultiSelect() {
		c.answers[questionID] = []string{optionID}
		return
	}

	for i, id := range current {
		if id == optionID {
			c.answers[questionID] = append(current[:i:i], current[i+1:]...)
			return
		}
	}
	if len(current) >= question.MaxSelections() {
		return
	}
	c.answers[questionID] = append(current, optionID)
}

func (c *Controller) findQuestion(questionID string) (models.Question, bool) {
	for _, q := range c.quiz.Questions {
		if q.ID == questionID {
			return q, true
		}
	}
	return models.Question{}, false
}

func (c *Controller) hasOption(q models.Question, optionID string) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}

// Advance moves to the next question, clamped to the last one.
func (c *Controller) Advance() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady {
		return
	}
	if c.index < len(c.quiz.Questions)-1 {
		c.index++
	}
	c.hasInteracted = true
}

// Retreat moves to the previous question, clamped to the first one.
func (c *Controller) Retreat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady {
		return
	}
	if c.index > 0 {
		c.index--
	}
	c.hasInteracted = true
}

func (c *Controller) hasAllAnswersLocked() bool {
	for _, q := range c.quiz.Questions {
		if len(c.answers[q.ID]) == 0 {
			return false
		}
	}
	return len(c.quiz.Questions) > 0
}

// ===== SUBMIT =====

// Submit commits the buffered answers. Guarded: requires READY state,
// no outstanding commit, and an answer for every question. On an
// upstream "not in progress" rejection the local status reconciles to
// ABANDONED; the server's view of the attempt always wins.
func (c *Controller) Submit(ctx context.Context) (*models.QuizResult, error) {
	c.mu.Lock()
	if c.state.terminal() {
		result := c.result
		c.mu.Unlock()
		if result != nil {
			return result, nil
		}
		return nil, ErrNotReady
	}
	if c.state != StateReady || c.attempt.Status != models.AttemptInProgress {
		c.mu.Unlock()
		return nil, ErrNotReady
	}
	if c.commitInFlight {
		c.mu.Unlock()
		return nil, ErrCommitInFlight
	}
	if !c.hasAllAnswersLocked() {
		c.mu.Unlock()
		return nil, ErrNotAllAnswered
	}

	c.commitInFlight = true
	c.state = StateSubmitting
	attemptID := c.attempt.ID
	answers := c.buildSubmissionLocked()
	c.mu.Unlock()

	result, err := c.client.SubmitAttempt(ctx, attemptID, answers)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.commitInFlight = false

	if err != nil {
		if api.IsAttemptNotActive(err) {
			// Stale local view; the attempt ended server-side.
			c.transitionLocked(StateAbandoned, models.AttemptAbandoned)
			c.lastErr = err.Error()
			return nil, err
		}
		c.state = StateReady
		c.lastErr = err.Error()
		return nil, err
	}

	c.transitionLocked(StateCompleted, models.AttemptCompleted)
	c.result = result
	c.logger.Info("attempt submitted", "attempt_id", attemptID, "score", result.Score)
	return result, nil
}

// buildSubmissionLocked serializes the buffer in quiz question order.
func (c *Controller) buildSubmissionLocked() []models.AnswerSubmission {
	answers := make([]models.AnswerSubmission, 0, len(c.quiz.Questions))
	for _, q := range c.quiz.Questions {
		selected := c.answers[q.ID]
		if len(selected) == 0 {
			continue
		}
		answers = append(answers, models.AnswerSubmission{
			QuestionID:        q.ID,
			SelectedOptionIDs: append([]string(nil), selected...),
		})
	}
	return answers
}

// ===== ABANDON =====

// Abandon ends the attempt without scoring. At-most-once: overlapping
// triggers (explicit exit, teardown, time expiry) collapse into a single
// network call, and losing the race is a no-op. An upstream "only
// in-progress attempts can be abandoned" failure means another path got
// there first and is swallowed.
func (c *Controller) Abandon(ctx context.Context, reason models.AbandonReason) error {
	c.mu.Lock()
	if c.state.terminal() || c.attempt.Status.Terminal() {
		c.mu.Unlock()
		return nil
	}
	if c.abandonFired || c.commitInFlight {
		c.mu.Unlock()
		return nil
	}

	c.abandonFired = true
	c.commitInFlight = true
	c.state = StateAbandoning
	attemptID := c.attempt.ID
	c.mu.Unlock()

	err := c.client.EndAttempt(ctx, c.quizID, reason)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.commitInFlight = false

	if err != nil && !api.IsAttemptNotActive(err) {
		if api.IsUnauthorized(err) {
			c.state = StateError
			c.lastErr = err.Error()
			return err
		}
		// Transport failure: release the flag so an explicit retry can
		// still end the attempt.
		c.abandonFired = false
		c.state = StateReady
		c.lastErr = err.Error()
		return err
	}

	c.transitionLocked(StateAbandoned, models.AttemptAbandoned)
	c.logger.Info("attempt abandoned", "attempt_id", attemptID, "reason", reason)
	return nil
}

// transitionLocked moves to a terminal state and stops the countdown.
func (c *Controller) transitionLocked(state State, status models.AttemptStatus) {
	c.state = state
	c.attempt.Status = status
	now := c.clock.Now().UTC()
	c.attempt.CompletedAt = &now
	c.stopCountdownLocked()
}

// ===== COUNTDOWN =====

// RemainingSeconds reports the advisory countdown, reconstructed from
// the server's startedAt and clamped to zero.
func (c *Controller) RemainingSeconds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remainingLocked()
}

func (c *Controller) remainingLocked() int {
	if c.deadline.IsZero() {
		return 0
	}
	remaining := int(c.deadline.Sub(c.clock.Now()).Round(time.Second) / time.Second)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (c *Controller) runCountdown() {
	ticker := c.clock.NewTicker(time.Second)
	defer ticker.Stop()

	c.mu.Lock()
	stop := c.stopTick
	c.mu.Unlock()
	if stop == nil {
		return
	}

	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			if c.tick() {
				return
			}
		}
	}
}

// tick checks the deadline once. On expiry: auto-submit when every
// question is answered, otherwise abandon with TIME_EXPIRED. Returns
// true once the countdown is finished with.
func (c *Controller) tick() bool {
	c.mu.Lock()
	if c.state != StateReady || c.attempt.Status != models.AttemptInProgress {
		c.mu.Unlock()
		return true
	}
	if c.remainingLocked() > 0 {
		c.mu.Unlock()
		return false
	}
	allAnswered := c.hasAllAnswersLocked()
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), expiryCommitTimeout)
	defer cancel()

	if allAnswered {
		if _, err := c.Submit(ctx); err != nil {
			c.logger.Error("auto-submit on expiry failed", "quiz_id", c.quizID, "error", err)
		}
	} else {
		if err := c.Abandon(ctx, models.AbandonTimeExpired); err != nil {
			c.logger.Error("auto-abandon on expiry failed", "quiz_id", c.quizID, "error", err)
		}
	}
	return true
}

func (c *Controller) stopCountdownLocked() {
	if c.stopTick != nil {
		close(c.stopTick)
		c.stopTick = nil
	}
}

// ===== LIFECYCLE =====

// Close is the teardown hook. If the attempt is still in progress and
// the learner actually interacted, it abandons with reason AUTO; a
// mount-and-leave with no interaction must not burn the attempt. Skipped
// while a submission is in flight.
func (c *Controller) Close(ctx context.Context) {
	c.mu.Lock()
	shouldAbandon := c.state == StateReady &&
		c.attempt.Status == models.AttemptInProgress &&
		c.hasInteracted &&
		!c.commitInFlight &&
		!c.abandonFired
	if !shouldAbandon {
		c.stopCountdownLocked()
	}
	c.mu.Unlock()

	if shouldAbandon {
		if err := c.Abandon(ctx, models.AbandonAuto); err != nil {
			c.logger.Warn("abandon on teardown failed", "quiz_id", c.quizID, "error", err)
		}
		c.mu.Lock()
		c.stopCountdownLocked()
		c.mu.Unlock()
	}
}

// ===== VIEW =====

// View is the render-ready snapshot handed to the HTTP layer.
type View struct {
	State            State               `json:"state"`
	Error            string              `json:"error,omitempty"`
	Attempt          models.QuizAttempt  `json:"attempt"`
	Quiz             models.Quiz         `json:"quiz"`
	QuestionIndex    int                 `json:"questionIndex"`
	Answers          map[string][]string `json:"answers"`
	RemainingSeconds int                 `json:"remainingSeconds"`
	AllAnswered      bool                `json:"allAnswered"`
	Result           *models.QuizResult  `json:"result,omitempty"`
}

// Snapshot returns a copy of the controller's current state. The answer
// map is deep-copied; callers cannot mutate the buffer through it.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	answers := make(map[string][]string, len(c.answers))
	for questionID, selected := range c.answers {
		answers[questionID] = append([]string(nil), selected...)
	}

	return View{
		State:            c.state,
		Error:            c.lastErr,
		Attempt:          c.attempt,
		Quiz:             c.quiz,
		QuestionIndex:    c.index,
		Answers:          answers,
		RemainingSeconds: c.remainingLocked(),
		AllAnswered:      c.hasAllAnswersLocked(),
		Result:           c.result,
	}
}

// Status returns the attempt's current status under the lock.
func (c *Controller) Status() models.AttemptStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempt.Status
}
