package models

type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleUser  UserRole = "USER"
)

type UserStatus string

const (
	UserActive   UserStatus = "ACTIVE"
	UserDisabled UserStatus = "DISABLED"
)

type User struct {
	ID     string     `json:"id" validate:"required"`
	Name   string     `json:"name" validate:"required,min=1,max=100"`
	Email  string     `json:"email" validate:"required,email"`
	Role   UserRole   `json:"role" validate:"required,user_role"`
	Status UserStatus `json:"status,omitempty"`
}

// Profile is the dashboard view of the current user, including the
// aggregate stats the upstream computes from attempt history.
type Profile struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	QuizzesTaken int     `json:"quizzesTaken"`
	AverageScore float64 `json:"averageScore"`
}
