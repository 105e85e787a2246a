package models

import "time"

// QuizResult is the read-only post-submission report. Never mutated by
// the gateway.
type QuizResult struct {
	AttemptID        string           `json:"attemptId" validate:"required"`
	QuizID           string           `json:"quizId" validate:"required"`
	QuizTitle        string           `json:"quizTitle"`
	Score            int              `json:"score"`
	MaxPossibleScore int              `json:"maxPossibleScore"`
	Percentage       float64          `json:"percentage"`
	TimeTakenSeconds int              `json:"timeTakenSeconds"`
	StartedAt        time.Time        `json:"startedAt"`
	CompletedAt      *time.Time       `json:"completedAt"`
	Status           AttemptStatus    `json:"status"`
	QuestionResults  []QuestionResult `json:"questionResults"`
}

type QuestionResult struct {
	QuestionID        string   `json:"questionId"`
	QuestionText      string   `json:"questionText"`
	Correct           bool     `json:"correct"`
	PointsAwarded     int      `json:"pointsAwarded"`
	CorrectOptionIDs  []string `json:"correctOptionIds"`
	SelectedOptionIDs []string `json:"selectedOptionIds"`
	Options           []Option `json:"options,omitempty"`
	Explanation       string   `json:"explanation,omitempty"`
}
