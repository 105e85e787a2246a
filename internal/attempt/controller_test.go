package attempt

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizmaster-app/quiz-gateway/internal/api"
	"github.com/quizmaster-app/quiz-gateway/internal/models"
	"github.com/quizmaster-app/quiz-gateway/internal/utils"
)

// ===== FAKES =====

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// NewTicker returns a ticker that never fires; tests drive tick directly.
func (c *fakeClock) NewTicker(time.Duration) Ticker {
	return &fakeTicker{ch: make(chan time.Time)}
}

type fakeTicker struct {
	ch chan time.Time
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop()               {}

type fakeUpstream struct {
	mu sync.Mutex

	startCalls  int
	resumeCalls int
	submitCalls int
	endCalls    int

	startResp  *models.StartAttemptResponse
	resumeResp *models.StartAttemptResponse
	startErr   error
	resumeErr  error

	submitResult *models.QuizResult
	submitErr    error
	endErr       error

	lastSubmitAttemptID string
	lastSubmitAnswers   []models.AnswerSubmission
	lastEndQuizID       string
	lastEndReason       models.AbandonReason
}

func (f *fakeUpstream) StartAttempt(_ context.Context, quizID string) (*models.StartAttemptResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startCalls++
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.startResp, nil
}

func (f *fakeUpstream) ResumeAttempt(_ context.Context, quizID string) (*models.StartAttemptResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumeCalls++
	if f.resumeErr != nil {
		return nil, f.resumeErr
	}
	return f.resumeResp, nil
}

func (f *fakeUpstream) SubmitAttempt(_ context.Context, attemptID string, answers []models.AnswerSubmission) (*models.QuizResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitCalls++
	f.lastSubmitAttemptID = attemptID
	f.lastSubmitAnswers = answers
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.submitResult, nil
}

func (f *fakeUpstream) EndAttempt(_ context.Context, quizID string, reason models.AbandonReason) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.endCalls++
	f.lastEndQuizID = quizID
	f.lastEndReason = reason
	return f.endErr
}

// ===== FIXTURES =====

func testQuiz() models.Quiz {
	return models.Quiz{
		ID:               "7",
		Title:            "Networking Basics",
		TimeLimitMinutes: 10,
		Published:        true,
		Questions: []models.Question{
			{
				ID:               "q1",
				Text:             "Which layer does TCP live on?",
				Type:             models.SingleChoice,
				CorrectOptionIDs: []string{"o2"},
				Options: []models.Option{
					{ID: "o1", Text: "Transport"},
					{ID: "o2", Text: "Also transport"},
				},
			},
			{
				ID:               "q2",
				Text:             "Pick the connection-oriented protocols",
				Type:             models.MultipleChoice,
				CorrectOptionIDs: []string{"o3", "o4"},
				Options: []models.Option{
					{ID: "o3", Text: "TCP"},
					{ID: "o4", Text: "SCTP"},
					{ID: "o5", Text: "UDP"},
				},
			},
		},
	}
}

func testStartResponse(startedAt time.Time) *models.StartAttemptResponse {
	return &models.StartAttemptResponse{
		Attempt: models.QuizAttempt{
			ID:        "42",
			QuizID:    "7",
			UserID:    "u1",
			Status:    models.AttemptInProgress,
			StartedAt: startedAt,
		},
		Quiz: testQuiz(),
	}
}

func startedController(t *testing.T, upstream *fakeUpstream, clock *fakeClock) *Controller {
	t.Helper()
	if upstream.startResp == nil && upstream.startErr == nil {
		upstream.startResp = testStartResponse(clock.Now())
	}
	ctrl := NewController(upstream, "7", clock, utils.NewDevelopmentLogger())
	require.NoError(t, ctrl.Start(context.Background()))
	return ctrl
}

func answerEverything(ctrl *Controller) {
	ctrl.Select("q1", "o1")
	ctrl.Select("q2", "o3")
	ctrl.Select("q2", "o4")
}

// ===== START / RESUME =====

func TestController_Start_InvalidQuizIDFailsBeforeNetwork(t *testing.T) {
	upstream := &fakeUpstream{}
	ctrl := NewController(upstream, "definitely-not-a-number", newFakeClock(time.Now()), utils.NewDevelopmentLogger())

	err := ctrl.Start(context.Background())

	assert.ErrorIs(t, err, api.ErrQuizNotFound)
	assert.Equal(t, 0, upstream.startCalls)
	assert.Equal(t, StateError, ctrl.Snapshot().State)
}

func TestController_Start_ActiveAttemptConflictFallsBackToResume(t *testing.T) {
	clock := newFakeClock(time.Now())
	upstream := &fakeUpstream{
		startErr:   &api.APIError{StatusCode: http.StatusBadRequest, Message: "User already has an active attempt for this quiz"},
		resumeResp: testStartResponse(clock.Now().Add(-2 * time.Minute)),
	}
	ctrl := NewController(upstream, "7", clock, utils.NewDevelopmentLogger())

	require.NoError(t, ctrl.Start(context.Background()))

	assert.Equal(t, 1, upstream.startCalls)
	assert.Equal(t, 1, upstream.resumeCalls)
	assert.Equal(t, StateReady, ctrl.Snapshot().State)
}

func TestController_Start_ResumedCompletedAttemptSignalsRedirect(t *testing.T) {
	clock := newFakeClock(time.Now())
	resp := testStartResponse(clock.Now())
	resp.Attempt.Status = models.AttemptCompleted
	upstream := &fakeUpstream{startResp: resp}
	ctrl := NewController(upstream, "7", clock, utils.NewDevelopmentLogger())

	err := ctrl.Start(context.Background())

	assert.ErrorIs(t, err, ErrAlreadyCompleted)
	assert.Equal(t, StateCompleted, ctrl.Snapshot().State)
}

func TestController_Start_SeedsBufferFromPersistedAnswers(t *testing.T) {
	clock := newFakeClock(time.Now())
	resp := testStartResponse(clock.Now().Add(-1 * time.Minute))
	resp.Attempt.Answers = []models.AnswerSubmission{
		{QuestionID: "q1", SelectedOptionIDs: []string{"o1"}},
		{QuestionID: "q2", SelectedOptionIDs: []string{"o3", "o4"}},
	}
	upstream := &fakeUpstream{startResp: resp}
	ctrl := NewController(upstream, "7", clock, utils.NewDevelopmentLogger())

	require.NoError(t, ctrl.Start(context.Background()))

	view := ctrl.Snapshot()
	assert.Equal(t, []string{"o1"}, view.Answers["q1"])
	assert.Equal(t, []string{"o3", "o4"}, view.Answers["q2"])
	assert.True(t, view.AllAnswered)
}

// ===== SELECTION =====

func TestController_Select_SingleChoiceReplaces(t *testing.T) {
	ctrl := startedController(t, &fakeUpstream{}, newFakeClock(time.Now()))

	ctrl.Select("q1", "o1")
	ctrl.Select("q1", "o2")

	assert.Equal(t, []string{"o2"}, ctrl.Snapshot().Answers["q1"])
}

func TestController_Select_MultiChoiceTogglesAndCaps(t *testing.T) {
	ctrl := startedController(t, &fakeUpstream{}, newFakeClock(time.Now()))

	ctrl.Select("q2", "o3")
	ctrl.Select("q2", "o4")
	// Cap for q2 is two selections; a third distinct option is ignored.
	ctrl.Select("q2", "o5")
	assert.Equal(t, []string{"o3", "o4"}, ctrl.Snapshot().Answers["q2"])

	// Toggling an already-selected option removes it and frees a slot.
	ctrl.Select("q2", "o3")
	assert.Equal(t, []string{"o4"}, ctrl.Snapshot().Answers["q2"])
	ctrl.Select("q2", "o5")
	assert.Equal(t, []string{"o4", "o5"}, ctrl.Snapshot().Answers["q2"])
}

func TestController_Select_MultiChoiceSingleCorrectStillToggles(t *testing.T) {
	clock := newFakeClock(time.Now())
	resp := testStartResponse(clock.Now())
	resp.Quiz.Questions = []models.Question{
		{
			ID:               "q1",
			Text:             "Which of these is a routing protocol?",
			Type:             models.MultipleChoice,
			CorrectOptionIDs: []string{"o2"},
			Options: []models.Option{
				{ID: "o1", Text: "HTTP"},
				{ID: "o2", Text: "OSPF"},
			},
		},
	}
	ctrl := startedController(t, &fakeUpstream{startResp: resp}, clock)

	// Cap is one, but the question still toggles rather than replaces.
	ctrl.Select("q1", "o1")
	ctrl.Select("q1", "o2")
	assert.Equal(t, []string{"o1"}, ctrl.Snapshot().Answers["q1"])

	// Re-clicking the selected option deselects it.
	ctrl.Select("q1", "o1")
	assert.Empty(t, ctrl.Snapshot().Answers["q1"])

	ctrl.Select("q1", "o2")
	assert.Equal(t, []string{"o2"}, ctrl.Snapshot().Answers["q1"])
}

func TestController_Select_UnknownQuestionOrOptionIgnored(t *testing.T) {
	ctrl := startedController(t, &fakeUpstream{}, newFakeClock(time.Now()))

	ctrl.Select("q9", "o1")
	ctrl.Select("q1", "o999")

	assert.Empty(t, ctrl.Snapshot().Answers)
}

func TestController_Navigate_ClampsAtBothEnds(t *testing.T) {
	ctrl := startedController(t, &fakeUpstream{}, newFakeClock(time.Now()))

	ctrl.Retreat()
	assert.Equal(t, 0, ctrl.Snapshot().QuestionIndex)

	ctrl.Advance()
	ctrl.Advance()
	ctrl.Advance()
	assert.Equal(t, 1, ctrl.Snapshot().QuestionIndex)
}

// ===== SUBMIT =====

func TestController_Submit_SendsAnswersInQuestionOrder(t *testing.T) {
	upstream := &fakeUpstream{submitResult: &models.QuizResult{AttemptID: "42", Score: 2}}
	ctrl := startedController(t, upstream, newFakeClock(time.Now()))
	answerEverything(ctrl)

	result, err := ctrl.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, result.Score)
	assert.Equal(t, "42", upstream.lastSubmitAttemptID)
	assert.Equal(t, []models.AnswerSubmission{
		{QuestionID: "q1", SelectedOptionIDs: []string{"o1"}},
		{QuestionID: "q2", SelectedOptionIDs: []string{"o3", "o4"}},
	}, upstream.lastSubmitAnswers)
	assert.Equal(t, StateCompleted, ctrl.Snapshot().State)
}

func TestController_Submit_RejectedWhileUnanswered(t *testing.T) {
	upstream := &fakeUpstream{}
	ctrl := startedController(t, upstream, newFakeClock(time.Now()))
	ctrl.Select("q1", "o1")

	_, err := ctrl.Submit(context.Background())

	assert.ErrorIs(t, err, ErrNotAllAnswered)
	assert.Equal(t, 0, upstream.submitCalls)
}

func TestController_Submit_SecondCallDoesNotHitUpstreamAgain(t *testing.T) {
	upstream := &fakeUpstream{submitResult: &models.QuizResult{AttemptID: "42", Score: 2}}
	ctrl := startedController(t, upstream, newFakeClock(time.Now()))
	answerEverything(ctrl)

	first, err := ctrl.Submit(context.Background())
	require.NoError(t, err)

	second, err := ctrl.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, upstream.submitCalls)
	assert.Same(t, first, second)
}

func TestController_Submit_NotInProgressRejectionReconcilesToAbandoned(t *testing.T) {
	upstream := &fakeUpstream{
		submitErr: &api.APIError{StatusCode: http.StatusBadRequest, Message: "Only in-progress attempts can be submitted."},
	}
	ctrl := startedController(t, upstream, newFakeClock(time.Now()))
	answerEverything(ctrl)

	_, err := ctrl.Submit(context.Background())

	require.Error(t, err)
	view := ctrl.Snapshot()
	assert.Equal(t, StateAbandoned, view.State)
	assert.Equal(t, models.AttemptAbandoned, view.Attempt.Status)
}

func TestController_Submit_TransportFailureLeavesAttemptInProgress(t *testing.T) {
	upstream := &fakeUpstream{submitErr: api.ErrUnavailable}
	ctrl := startedController(t, upstream, newFakeClock(time.Now()))
	answerEverything(ctrl)

	_, err := ctrl.Submit(context.Background())
	require.Error(t, err)

	// Buffer and state survive; the user can retry.
	view := ctrl.Snapshot()
	assert.Equal(t, StateReady, view.State)
	assert.Equal(t, models.AttemptInProgress, view.Attempt.Status)

	upstream.mu.Lock()
	upstream.submitErr = nil
	upstream.submitResult = &models.QuizResult{AttemptID: "42"}
	upstream.mu.Unlock()

	_, err = ctrl.Submit(context.Background())
	assert.NoError(t, err)
}

// ===== ABANDON =====

func TestController_Abandon_SendsUserReason(t *testing.T) {
	upstream := &fakeUpstream{}
	ctrl := startedController(t, upstream, newFakeClock(time.Now()))
	ctrl.Select("q1", "o1")

	require.NoError(t, ctrl.Abandon(context.Background(), models.AbandonUser))

	assert.Equal(t, 1, upstream.endCalls)
	assert.Equal(t, "7", upstream.lastEndQuizID)
	assert.Equal(t, models.AbandonUser, upstream.lastEndReason)
	assert.Equal(t, StateAbandoned, ctrl.Snapshot().State)
}

func TestController_Abandon_SecondTriggerIsNoOp(t *testing.T) {
	upstream := &fakeUpstream{}
	ctrl := startedController(t, upstream, newFakeClock(time.Now()))

	require.NoError(t, ctrl.Abandon(context.Background(), models.AbandonUser))
	require.NoError(t, ctrl.Abandon(context.Background(), models.AbandonAuto))

	assert.Equal(t, 1, upstream.endCalls)
}

func TestController_Abandon_BenignRaceWithServerIsSwallowed(t *testing.T) {
	upstream := &fakeUpstream{
		endErr: &api.APIError{StatusCode: http.StatusBadRequest, Message: "Only in-progress attempts can be abandoned."},
	}
	ctrl := startedController(t, upstream, newFakeClock(time.Now()))

	err := ctrl.Abandon(context.Background(), models.AbandonUser)

	assert.NoError(t, err)
	assert.Equal(t, StateAbandoned, ctrl.Snapshot().State)
}

func TestController_Abandon_TransportFailureAllowsRetry(t *testing.T) {
	upstream := &fakeUpstream{endErr: api.ErrUnavailable}
	ctrl := startedController(t, upstream, newFakeClock(time.Now()))

	require.Error(t, ctrl.Abandon(context.Background(), models.AbandonUser))

	upstream.mu.Lock()
	upstream.endErr = nil
	upstream.mu.Unlock()

	require.NoError(t, ctrl.Abandon(context.Background(), models.AbandonUser))
	assert.Equal(t, 2, upstream.endCalls)
	assert.Equal(t, StateAbandoned, ctrl.Snapshot().State)
}

func TestController_Abandon_AfterCompletionIsNoOp(t *testing.T) {
	upstream := &fakeUpstream{submitResult: &models.QuizResult{AttemptID: "42"}}
	ctrl := startedController(t, upstream, newFakeClock(time.Now()))
	answerEverything(ctrl)

	_, err := ctrl.Submit(context.Background())
	require.NoError(t, err)

	require.NoError(t, ctrl.Abandon(context.Background(), models.AbandonUser))
	assert.Equal(t, 0, upstream.endCalls)
	assert.Equal(t, models.AttemptCompleted, ctrl.Status())
}

// ===== TIMER =====

func TestController_RemainingSeconds_ReconstructedFromStartedAt(t *testing.T) {
	clock := newFakeClock(time.Now())
	upstream := &fakeUpstream{startResp: testStartResponse(clock.Now().Add(-9 * time.Minute))}
	ctrl := startedController(t, upstream, clock)

	assert.InDelta(t, 60, ctrl.RemainingSeconds(), 1)
}

func TestController_RemainingSeconds_ClampedAtZero(t *testing.T) {
	clock := newFakeClock(time.Now())
	upstream := &fakeUpstream{startResp: testStartResponse(clock.Now().Add(-30 * time.Minute))}
	ctrl := startedController(t, upstream, clock)

	assert.Equal(t, 0, ctrl.RemainingSeconds())
}

func TestController_Expiry_AutoSubmitsWhenAllAnswered(t *testing.T) {
	clock := newFakeClock(time.Now())
	upstream := &fakeUpstream{submitResult: &models.QuizResult{AttemptID: "42"}}
	ctrl := startedController(t, upstream, clock)
	answerEverything(ctrl)

	clock.Advance(11 * time.Minute)
	done := ctrl.tick()

	assert.True(t, done)
	assert.Equal(t, 1, upstream.submitCalls)
	assert.Equal(t, 0, upstream.endCalls)
	assert.Equal(t, models.AttemptCompleted, ctrl.Status())
}

func TestController_Expiry_AbandonsWithTimeExpiredWhenIncomplete(t *testing.T) {
	clock := newFakeClock(time.Now())
	upstream := &fakeUpstream{}
	ctrl := startedController(t, upstream, clock)
	ctrl.Select("q1", "o1")

	clock.Advance(11 * time.Minute)
	done := ctrl.tick()

	assert.True(t, done)
	assert.Equal(t, 0, upstream.submitCalls)
	assert.Equal(t, 1, upstream.endCalls)
	assert.Equal(t, models.AbandonTimeExpired, upstream.lastEndReason)
	assert.Equal(t, models.AttemptAbandoned, ctrl.Status())
}

func TestController_Tick_BeforeDeadlineKeepsTicking(t *testing.T) {
	clock := newFakeClock(time.Now())
	upstream := &fakeUpstream{}
	ctrl := startedController(t, upstream, clock)

	clock.Advance(5 * time.Minute)

	assert.False(t, ctrl.tick())
	assert.Equal(t, 0, upstream.submitCalls)
	assert.Equal(t, 0, upstream.endCalls)
}

// ===== TEARDOWN =====

func TestController_Close_UntouchedAttemptSurvives(t *testing.T) {
	upstream := &fakeUpstream{}
	ctrl := startedController(t, upstream, newFakeClock(time.Now()))

	ctrl.Close(context.Background())

	assert.Equal(t, 0, upstream.endCalls)
	assert.Equal(t, models.AttemptInProgress, ctrl.Status())
}

func TestController_Close_InteractedAttemptAbandonsAuto(t *testing.T) {
	upstream := &fakeUpstream{}
	ctrl := startedController(t, upstream, newFakeClock(time.Now()))
	ctrl.Select("q1", "o1")

	ctrl.Close(context.Background())

	assert.Equal(t, 1, upstream.endCalls)
	assert.Equal(t, models.AbandonAuto, upstream.lastEndReason)
}

func TestController_Close_AfterSubmitIsNoOp(t *testing.T) {
	upstream := &fakeUpstream{submitResult: &models.QuizResult{AttemptID: "42"}}
	ctrl := startedController(t, upstream, newFakeClock(time.Now()))
	answerEverything(ctrl)

	_, err := ctrl.Submit(context.Background())
	require.NoError(t, err)

	ctrl.Close(context.Background())
	assert.Equal(t, 0, upstream.endCalls)
}

// ===== MANAGER =====

func TestManager_StartOrResume_ReturnsSameControllerForPair(t *testing.T) {
	clock := newFakeClock(time.Now())
	upstream := &fakeUpstream{startResp: testStartResponse(clock.Now())}
	manager := NewManager(func(string) UpstreamClient { return upstream }, clock, utils.NewDevelopmentLogger())

	first, err := manager.StartOrResume(context.Background(), "sess-1", "7")
	require.NoError(t, err)
	second, err := manager.StartOrResume(context.Background(), "sess-1", "7")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, upstream.startCalls)
}

func TestManager_StartOrResume_FailedStartIsForgotten(t *testing.T) {
	clock := newFakeClock(time.Now())
	upstream := &fakeUpstream{startErr: api.ErrUnavailable}
	manager := NewManager(func(string) UpstreamClient { return upstream }, clock, utils.NewDevelopmentLogger())

	_, err := manager.StartOrResume(context.Background(), "sess-1", "7")
	require.Error(t, err)

	_, err = manager.Get("sess-1", "7")
	assert.ErrorIs(t, err, ErrNoActiveController)
}

func TestManager_CloseSession_TearsDownOnlyThatSession(t *testing.T) {
	clock := newFakeClock(time.Now())
	upstream := &fakeUpstream{startResp: testStartResponse(clock.Now())}
	manager := NewManager(func(string) UpstreamClient { return upstream }, clock, utils.NewDevelopmentLogger())

	ctrlA, err := manager.StartOrResume(context.Background(), "sess-a", "7")
	require.NoError(t, err)
	ctrlA.Select("q1", "o1")
	_, err = manager.StartOrResume(context.Background(), "sess-b", "7")
	require.NoError(t, err)

	manager.CloseSession(context.Background(), "sess-a")

	_, err = manager.Get("sess-a", "7")
	assert.ErrorIs(t, err, ErrNoActiveController)
	_, err = manager.Get("sess-b", "7")
	assert.NoError(t, err)
	assert.Equal(t, 1, upstream.endCalls)
}

// ===== STATE GUARDS =====

func TestController_SelectIgnoredAfterTerminalState(t *testing.T) {
	upstream := &fakeUpstream{}
	ctrl := startedController(t, upstream, newFakeClock(time.Now()))
	require.NoError(t, ctrl.Abandon(context.Background(), models.AbandonUser))

	ctrl.Select("q1", "o1")

	assert.Empty(t, ctrl.Snapshot().Answers)
}

func TestController_SubmitAfterAbandonRejected(t *testing.T) {
	upstream := &fakeUpstream{}
	ctrl := startedController(t, upstream, newFakeClock(time.Now()))
	answerEverything(ctrl)
	require.NoError(t, ctrl.Abandon(context.Background(), models.AbandonUser))

	_, err := ctrl.Submit(context.Background())

	assert.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, 0, upstream.submitCalls)
}

func TestController_ConcurrentSubmitsReachUpstreamOnce(t *testing.T) {
	upstream := &fakeUpstream{submitResult: &models.QuizResult{AttemptID: "42"}}
	ctrl := startedController(t, upstream, newFakeClock(time.Now()))
	answerEverything(ctrl)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ctrl.Submit(context.Background())
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, upstream.submitCalls)
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.GreaterOrEqual(t, succeeded, 1)
}

func TestController_ConcurrentAbandonsReachUpstreamOnce(t *testing.T) {
	upstream := &fakeUpstream{}
	ctrl := startedController(t, upstream, newFakeClock(time.Now()))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = ctrl.Abandon(context.Background(), models.AbandonUser)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, upstream.endCalls)
	assert.Equal(t, models.AttemptAbandoned, ctrl.Status())
}

func TestController_EndToEnd_SubmitFlow(t *testing.T) {
	clock := newFakeClock(time.Now())
	quiz := models.Quiz{
		ID:               "7",
		Title:            "Mixed round",
		TimeLimitMinutes: 1,
		Published:        true,
		Questions: []models.Question{
			{
				ID:               "q1",
				Text:             "Single choice",
				Type:             models.SingleChoice,
				CorrectOptionIDs: []string{"o2"},
				Options: []models.Option{
					{ID: "o1", Text: "A"}, {ID: "o2", Text: "B"},
					{ID: "o3", Text: "C"}, {ID: "o4", Text: "D"},
				},
			},
			{
				ID:               "q2",
				Text:             "Pick two",
				Type:             models.MultipleChoice,
				CorrectOptionIDs: []string{"o1", "o3"},
				Options: []models.Option{
					{ID: "o1", Text: "A"}, {ID: "o2", Text: "B"}, {ID: "o3", Text: "C"},
					{ID: "o4", Text: "D"}, {ID: "o5", Text: "E"},
				},
			},
		},
	}
	upstream := &fakeUpstream{
		startResp: &models.StartAttemptResponse{
			Attempt: models.QuizAttempt{ID: "42", QuizID: "7", UserID: "u1", Status: models.AttemptInProgress, StartedAt: clock.Now()},
			Quiz:    quiz,
		},
		submitResult: &models.QuizResult{AttemptID: "42", QuizID: "7", Score: 3, Status: models.AttemptCompleted},
	}
	ctrl := NewController(upstream, "7", clock, utils.NewDevelopmentLogger())
	require.NoError(t, ctrl.Start(context.Background()))
	assert.Equal(t, 60, ctrl.RemainingSeconds())

	ctrl.Select("q1", "o2")
	ctrl.Select("q2", "o1")
	ctrl.Select("q2", "o3")

	result, err := ctrl.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "42", result.AttemptID)

	assert.Equal(t, 1, upstream.submitCalls)
	assert.Equal(t, []models.AnswerSubmission{
		{QuestionID: "q1", SelectedOptionIDs: []string{"o2"}},
		{QuestionID: "q2", SelectedOptionIDs: []string{"o1", "o3"}},
	}, upstream.lastSubmitAnswers)
	assert.Equal(t, models.AttemptCompleted, ctrl.Status())
}

func TestController_ResumedAbandonedAttemptErrors(t *testing.T) {
	clock := newFakeClock(time.Now())
	resp := testStartResponse(clock.Now())
	resp.Attempt.Status = models.AttemptAbandoned
	upstream := &fakeUpstream{startResp: resp}
	ctrl := NewController(upstream, "7", clock, utils.NewDevelopmentLogger())

	err := ctrl.Start(context.Background())

	assert.True(t, errors.Is(err, ErrAttemptAbandoned))
	assert.Equal(t, StateError, ctrl.Snapshot().State)
}
