package domain

import "math"

// Progress is a completion summary over countable items. For an unsplit task
// the task itself is one countable item; for a split task each part is one
// countable item and the task's own flag is ignored.
type Progress struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Percent   int `json:"percent"`
}

// NewProgress builds a Progress with the percentage derived from the counts.
// Percent is rounded half away from zero; an empty total yields 0.
func NewProgress(total, completed int) Progress {
	return Progress{
		Total:     total,
		Completed: completed,
		Percent:   percent(total, completed),
	}
}

// Merge combines two progress summaries, recomputing the percentage.
func (p Progress) Merge(other Progress) Progress {
	return NewProgress(p.Total+other.Total, p.Completed+other.Completed)
}

// TaskProgress counts a task's contribution given its parts. A task with no
// parts contributes a single item driven by its own flag; a split task
// contributes one item per part.
func TaskProgress(task Task, parts []TaskPart) Progress {
	if len(parts) == 0 {
		completed := 0
		if task.Completed {
			completed = 1
		}
		return NewProgress(1, completed)
	}
	completed := 0
	for _, part := range parts {
		if part.Completed {
			completed++
		}
	}
	return NewProgress(len(parts), completed)
}

// EffectiveCompleted reports a task's derived completion state. A split task
// is complete iff every part is; an unsplit task defers to its own flag,
// which is never consulted while parts exist.
func EffectiveCompleted(task Task, parts []TaskPart) bool {
	if len(parts) == 0 {
		return task.Completed
	}
	for _, part := range parts {
		if !part.Completed {
			return false
		}
	}
	return true
}

func percent(total, completed int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) * 100 / float64(total)))
}
