package export

import (
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/quizmaster-app/quiz-gateway/internal/models"
	"github.com/quizmaster-app/quiz-gateway/internal/utils"
)

const timestampFormat = "2006-01-02 15:04:05"

// Service renders a user's attempt history as downloadable reports.
type Service struct {
	logger utils.Logger
}

func NewService(logger utils.Logger) *Service {
	return &Service{logger: logger}
}

var historyHeaders = []string{
	"Attempt ID", "Quiz", "Category", "Status", "Score", "Max Score",
	"Percentage", "Started At", "Completed At", "Time Taken (minutes)",
}

// HistoryCSV writes the attempt history as CSV.
func (s *Service) HistoryCSV(entries []models.AttemptHistoryEntry) ([]byte, error) {
	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	if err := writer.Write(historyHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, entry := range entries {
		if err := writer.Write(historyRowStrings(entry)); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	s.logger.Debug("history exported as csv", "rows", len(entries))
	return []byte(buf.String()), nil
}

// HistoryExcel writes the attempt history plus an aggregate summary
// sheet as an xlsx workbook.
func (s *Service) HistoryExcel(entries []models.AttemptHistoryEntry) ([]byte, error) {
	f := excelize.NewFile()
	sheetName := "Attempt History"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	for i, header := range historyHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, entry := range entries {
		for colIndex, value := range historyRowValues(entry) {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	if err := s.writeSummarySheet(f, entries); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Debug("history exported as xlsx", "rows", len(entries))
	return buf.Bytes(), nil
}

func (s *Service) writeSummarySheet(f *excelize.File, entries []models.AttemptHistoryEntry) error {
	sheetName := "Summary"
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	summary := Summarize(entries)
	rows := [][]interface{}{
		{"Quizzes Taken", summary.QuizzesTaken},
		{"Quizzes Passed", summary.QuizzesPassed},
		{"Average Score (%)", summary.AverageScore},
		{"Best Score (%)", summary.BestScore},
		{"Total Time Spent (minutes)", summary.TotalTimeSpent / 60},
	}
	for category, average := range summary.ByCategory {
		rows = append(rows, []interface{}{"Average in " + category + " (%)", average})
	}

	for rowIndex, row := range rows {
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+1)
			f.SetCellValue(sheetName, cell, value)
		}
	}
	return nil
}

func historyRowValues(entry models.AttemptHistoryEntry) []interface{} {
	row := []interface{}{
		entry.ID,
		entry.QuizTitle,
		entry.Category,
		string(entry.Status),
		entry.Score,
		entry.MaxPossibleScore,
		percentage(entry),
		entry.StartedAt.Format(timestampFormat),
	}
	if entry.CompletedAt != nil {
		row = append(row, entry.CompletedAt.Format(timestampFormat))
	} else {
		row = append(row, "")
	}
	if entry.TimeTakenSeconds != nil {
		row = append(row, *entry.TimeTakenSeconds/60)
	} else {
		row = append(row, "")
	}
	return row
}

func historyRowStrings(entry models.AttemptHistoryEntry) []string {
	values := historyRowValues(entry)
	row := make([]string, len(values))
	for i, value := range values {
		switch v := value.(type) {
		case string:
			row[i] = v
		case int:
			row[i] = fmt.Sprintf("%d", v)
		case float64:
			row[i] = fmt.Sprintf("%.1f", v)
		case time.Time:
			row[i] = v.Format(timestampFormat)
		default:
			row[i] = fmt.Sprintf("%v", v)
		}
	}
	return row
}

func percentage(entry models.AttemptHistoryEntry) float64 {
	if entry.MaxPossibleScore <= 0 {
		return 0
	}
	return float64(entry.Score) / float64(entry.MaxPossibleScore) * 100
}
