// Package stats derives dashboard figures from the three task
// collections. Nothing here is persisted.
package stats

import (
	"math"
	"time"

	"taskhub/internal/models"
)

// Item is one task of any kind, tagged with its origin.
type Item struct {
	Kind      models.TaskKind
	Priority  string
	Status    string
	Due       *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Summary struct {
	Total                 int                     `json:"total"`
	Completed             int                     `json:"completed"`
	InProgress            int                     `json:"inProgress"`
	NotStarted            int                     `json:"notStarted"`
	Overdue               int                     `json:"overdue"`
	CompletionRate        float64                 `json:"completionRate"`
	AverageCompletionDays float64                 `json:"averageCompletionDays"`
	ByPriority            map[string]int          `json:"byPriority"`
	ByType                map[models.TaskKind]int `json:"byType"`
}

// Merge flattens the three collections into tagged items.
func Merge(tasks []models.Task, vital []models.VitalTask, mine []models.MyTask) []Item {
	items := make([]Item, 0, len(tasks)+len(vital)+len(mine))
	for _, t := range tasks {
		items = append(items, fromBase(models.KindTask, t.TaskBase, t.DueDate))
	}
	for _, t := range vital {
		items = append(items, fromBase(models.KindVitalTask, t.TaskBase, nil))
	}
	for _, t := range mine {
		items = append(items, fromBase(models.KindMyTask, t.TaskBase, t.Deadline))
	}
	return items
}

func fromBase(kind models.TaskKind, b models.TaskBase, due *time.Time) Item {
	return Item{
		Kind:      kind,
		Priority:  b.Priority,
		Status:    b.Status,
		Due:       due,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// Compute is deterministic for a given now.
func Compute(items []Item, now time.Time) Summary {
	s := Summary{
		ByPriority: map[string]int{},
		ByType: map[models.TaskKind]int{
			models.KindTask:      0,
			models.KindVitalTask: 0,
			models.KindMyTask:    0,
		},
	}
	for _, p := range models.Priorities {
		s.ByPriority[p] = 0
	}

	var completedDays float64
	for _, it := range items {
		s.Total++
		s.ByType[it.Kind]++
		s.ByPriority[it.Priority]++

		switch it.Status {
		case models.StatusCompleted:
			s.Completed++
			completedDays += it.UpdatedAt.Sub(it.CreatedAt).Hours() / 24
		case models.StatusInProgress:
			s.InProgress++
		case models.StatusNotStarted:
			s.NotStarted++
		}

		if it.Due != nil && it.Due.Before(now) && it.Status != models.StatusCompleted {
			s.Overdue++
		}
	}

	if s.Total > 0 {
		s.CompletionRate = round2(float64(s.Completed) / float64(s.Total) * 100)
	}
	if s.Completed > 0 {
		s.AverageCompletionDays = round2(completedDays / float64(s.Completed))
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
