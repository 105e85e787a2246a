package models

type QuestionType string

const (
	SingleChoice   QuestionType = "SINGLE_CHOICE"
	MultipleChoice QuestionType = "MULTIPLE_CHOICE"
	TrueFalse      QuestionType = "TRUE_FALSE"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "Easy"
	DifficultyMedium DifficultyLevel = "Medium"
	DifficultyHard   DifficultyLevel = "Hard"
)

type Option struct {
	ID   string `json:"id" validate:"required"`
	Text string `json:"text" validate:"required"`

	// Correct is populated only in authoring and preview payloads.
	// In-progress attempt payloads carry correctness via
	// Question.CorrectOptionIDs instead.
	Correct bool `json:"isCorrect,omitempty"`
}

type Question struct {
	ID          string          `json:"id" validate:"required"`
	Text        string          `json:"text" validate:"required,min=1"`
	Type        QuestionType    `json:"questionType" validate:"required,question_type"`
	Explanation string          `json:"explanation,omitempty"`
	Difficulty  DifficultyLevel `json:"difficulty,omitempty" validate:"omitempty,difficulty_level"`
	Options     []Option        `json:"options" validate:"required,min=2,dive"`

	// CorrectOptionIDs bounds multi-select cardinality during an attempt
	// and drives result rendering. Single-select and true/false carry
	// exactly one entry.
	CorrectOptionIDs []string `json:"correctOptionIds" validate:"required,min=1"`
}

// MaxSelections is the selection cap for the question inside an attempt.
func (q Question) MaxSelections() int {
	if q.Type == MultipleChoice {
		return len(q.CorrectOptionIDs)
	}
	return 1
}

// IsMultiSelect reports whether the question uses toggle semantics.
// Type alone decides: a MULTIPLE_CHOICE question with a single correct
// option still toggles (re-click deselects) rather than replacing.
func (q Question) IsMultiSelect() bool {
	return q.Type == MultipleChoice
}

type Quiz struct {
	ID               string          `json:"id" validate:"required"`
	Title            string          `json:"title" validate:"required,min=1,max=200"`
	Description      string          `json:"description" validate:"max=1000"`
	Category         string          `json:"category,omitempty"`
	Difficulty       DifficultyLevel `json:"difficulty,omitempty" validate:"omitempty,difficulty_level"`
	TimeLimitMinutes int             `json:"timeLimitMinutes" validate:"required,min=1,max=300"`
	Published        bool            `json:"published"`
	Questions        []Question      `json:"questions,omitempty" validate:"omitempty,dive"`
}

// CreateQuizRequest is the authoring payload for the admin create/edit flow.
type CreateQuizRequest struct {
	Title            string                  `json:"title" validate:"required,min=1,max=200"`
	Description      string                  `json:"description" validate:"max=1000"`
	Category         string                  `json:"category" validate:"required"`
	Difficulty       DifficultyLevel         `json:"difficulty" validate:"required,difficulty_level"`
	TimeLimitMinutes int                     `json:"timeLimitMinutes" validate:"required,min=1,max=300"`
	Published        bool                    `json:"published"`
	Questions        []CreateQuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

type CreateQuestionRequest struct {
	Text        string                `json:"text" validate:"required,min=1"`
	Type        QuestionType          `json:"questionType" validate:"required,question_type"`
	Explanation string                `json:"explanation"`
	Difficulty  DifficultyLevel       `json:"difficulty" validate:"omitempty,difficulty_level"`
	Options     []CreateOptionRequest `json:"options" validate:"required,min=2,dive"`
}

type CreateOptionRequest struct {
	Text    string `json:"text" validate:"required"`
	Correct bool   `json:"isCorrect"`
}
