package export

import "github.com/quizmaster-app/quiz-gateway/internal/models"

// passThreshold matches the upstream's pass mark of half the available
// points.
const passThreshold = 50.0

// Summarize aggregates completed attempts into the dashboard summary.
// Abandoned and in-progress attempts count toward nothing.
func Summarize(entries []models.AttemptHistoryEntry) models.AnalyticsSummary {
	summary := models.AnalyticsSummary{
		ByCategory: make(map[string]float64),
	}

	categoryTotals := make(map[string]float64)
	categoryCounts := make(map[string]int)

	for _, entry := range entries {
		if entry.Status != models.AttemptCompleted {
			continue
		}
		pct := percentage(entry)

		summary.QuizzesTaken++
		summary.AverageScore += pct
		if pct >= passThreshold {
			summary.QuizzesPassed++
		}
		if pct > summary.BestScore {
			summary.BestScore = pct
		}
		if entry.TimeTakenSeconds != nil {
			summary.TotalTimeSpent += *entry.TimeTakenSeconds
		}
		if entry.Category != "" {
			categoryTotals[entry.Category] += pct
			categoryCounts[entry.Category]++
		}
	}

	if summary.QuizzesTaken > 0 {
		summary.AverageScore /= float64(summary.QuizzesTaken)
	}
	for category, total := range categoryTotals {
		summary.ByCategory[category] = total / float64(categoryCounts[category])
	}
	return summary
}
