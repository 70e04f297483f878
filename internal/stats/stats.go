// Package stats derives aggregate figures from task and project snapshots.
// Everything here is a pure function of its arguments; callers pass the
// current instant explicitly.
package stats

import (
	"math"
	"time"

	"github.com/tgienger/taskdeck/internal/models"
)

// Summary bundles the figures shown on the dashboard and profile screens
type Summary struct {
	Total          int
	Todo           int
	InProgress     int
	Completed      int
	Overdue        int
	CompletionRate int
	Projects       int
}

func CountTotal(tasks []models.Task) int {
	return len(tasks)
}

func CountByStatus(tasks []models.Task, status models.TaskStatus) int {
	n := 0
	for _, t := range tasks {
		if t.Status == status {
			n++
		}
	}
	return n
}

// IsOverdue reports whether an unfinished task's due date is before now
func IsOverdue(t models.Task, now time.Time) bool {
	return t.Status != models.StatusDone && t.DueDate != nil && t.DueDate.Before(now)
}

func CountOverdue(tasks []models.Task, now time.Time) int {
	n := 0
	for _, t := range tasks {
		if IsOverdue(t, now) {
			n++
		}
	}
	return n
}

// Percent returns round(100*part/total), or 0 when total is not positive.
// Halves round up.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Floor(100*float64(part)/float64(total) + 0.5))
}

// CompletionRate is the rounded share of done tasks
func CompletionRate(tasks []models.Task) int {
	return Percent(CountByStatus(tasks, models.StatusDone), CountTotal(tasks))
}

// Progress uses the project's server-side aggregates, which may lag behind
// local task mutations until the next project fetch.
func Progress(p models.Project) int {
	return Percent(p.CompletedTasks, p.TotalTasks)
}

func Summarize(tasks []models.Task, projects []models.Project, now time.Time) Summary {
	return Summary{
		Total:          CountTotal(tasks),
		Todo:           CountByStatus(tasks, models.StatusTodo),
		InProgress:     CountByStatus(tasks, models.StatusInProgress),
		Completed:      CountByStatus(tasks, models.StatusDone),
		Overdue:        CountOverdue(tasks, now),
		CompletionRate: CompletionRate(tasks),
		Projects:       len(projects),
	}
}
