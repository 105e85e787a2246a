package models

type LeaderboardEntry struct {
	UserID       string  `json:"userId"`
	Name         string  `json:"name"`
	TotalScore   int     `json:"totalScore"`
	AverageScore float64 `json:"averageScore"`
	QuizzesTaken int     `json:"quizzesTaken"`
	Rank         int     `json:"rank"`
}

// AnalyticsSummary is the dashboard aggregate computed gateway-side from
// attempt history.
type AnalyticsSummary struct {
	QuizzesTaken   int                `json:"quizzesTaken"`
	QuizzesPassed  int                `json:"quizzesPassed"`
	AverageScore   float64            `json:"averageScore"`
	BestScore      float64            `json:"bestScore"`
	TotalTimeSpent int                `json:"totalTimeSpentSeconds"`
	ByCategory     map[string]float64 `json:"byCategory"`
}
