package domain

import "time"

// Task represents a numbered item of work within a unit. Tasks are numbered
// sequentially starting at 1. A task tracks completion through its own flag
// until it is split into parts, at which point the flag stops participating
// in progress and the parts take over.
//
// Undoing a split deletes the parts without restoring the flag: the task
// keeps whatever completion value it last had through the flag-toggle path.
type Task struct {
	ID        string    `json:"id"`
	UnitID    string    `json:"unit_id"`
	Number    int       `json:"number"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskPart represents a lettered sub-item of a split task ("a", "b", ...).
type TaskPart struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	Letter    string    `json:"letter"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// NextLetter returns the part letter that follows prev in the lettering
// sequence: "a", "b", ..., "z", "aa", "ab", ... An empty prev yields "a".
func NextLetter(prev string) string {
	if prev == "" {
		return "a"
	}
	b := []byte(prev)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 'z' {
			b[i]++
			return string(b)
		}
		b[i] = 'a'
	}
	return "a" + string(b)
}

// LetterLess orders part letters by sequence position rather than
// lexicographically, so "z" sorts before "aa".
func LetterLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
