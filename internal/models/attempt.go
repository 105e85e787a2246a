package models

import "time"

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "IN_PROGRESS"
	AttemptCompleted  AttemptStatus = "COMPLETED"
	AttemptAbandoned  AttemptStatus = "ABANDONED"
)

// Terminal reports whether no further transition out of the status is
// permitted.
func (s AttemptStatus) Terminal() bool {
	return s == AttemptCompleted || s == AttemptAbandoned
}

type AbandonReason string

const (
	AbandonUser        AbandonReason = "USER"
	AbandonAuto        AbandonReason = "AUTO"
	AbandonTimeExpired AbandonReason = "TIME_EXPIRED"
)

type QuizAttempt struct {
	ID               string        `json:"id" validate:"required"`
	QuizID           string        `json:"quizId" validate:"required"`
	UserID           string        `json:"userId" validate:"required"`
	Status           AttemptStatus `json:"status" validate:"required,attempt_status"`
	StartedAt        time.Time     `json:"startedAt" validate:"required"`
	CompletedAt      *time.Time    `json:"completedAt"`
	Score            int           `json:"score"`
	TimeTakenSeconds *int          `json:"timeTakenSeconds"`

	// Answers carries previously saved selections on resume payloads only.
	Answers []AnswerSubmission `json:"answers,omitempty"`
}

// AnswerSubmission is one question's selected options, both in submit
// payloads and in resumed-attempt seeds.
type AnswerSubmission struct {
	QuestionID        string   `json:"questionId" validate:"required"`
	SelectedOptionIDs []string `json:"selectedOptionIds" validate:"required,min=1"`
}

// StartAttemptResponse is the combined payload the upstream returns from
// both the start and resume endpoints.
type StartAttemptResponse struct {
	Attempt QuizAttempt `json:"attempt" validate:"required"`
	Quiz    Quiz        `json:"quiz" validate:"required"`
}

type AttemptHistoryEntry struct {
	ID               string        `json:"id"`
	QuizID           string        `json:"quizId"`
	QuizTitle        string        `json:"quizTitle"`
	Status           AttemptStatus `json:"status"`
	Score            int           `json:"score"`
	MaxPossibleScore int           `json:"maxPossibleScore"`
	StartedAt        time.Time     `json:"startedAt"`
	CompletedAt      *time.Time    `json:"completedAt"`
	TimeTakenSeconds *int          `json:"timeTakenSeconds"`
	Category         string        `json:"category,omitempty"`
}
