package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProgress(t *testing.T) {
	tests := []struct {
		name        string
		total       int
		completed   int
		wantPercent int
	}{
		{name: "empty total is zero percent", total: 0, completed: 0, wantPercent: 0},
		{name: "none completed", total: 4, completed: 0, wantPercent: 0},
		{name: "all completed", total: 4, completed: 4, wantPercent: 100},
		{name: "half completed", total: 4, completed: 2, wantPercent: 50},
		{name: "two thirds rounds to 67", total: 3, completed: 2, wantPercent: 67},
		{name: "one third rounds to 33", total: 3, completed: 1, wantPercent: 33},
		{name: "one sixth rounds half up", total: 6, completed: 1, wantPercent: 17},
		{name: "exact half rounds away from zero", total: 8, completed: 1, wantPercent: 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProgress(tt.total, tt.completed)
			assert.Equal(t, tt.total, p.Total)
			assert.Equal(t, tt.completed, p.Completed)
			assert.Equal(t, tt.wantPercent, p.Percent)
		})
	}
}

func TestProgress_Merge(t *testing.T) {
	a := NewProgress(2, 1)
	b := NewProgress(4, 3)

	merged := a.Merge(b)
	assert.Equal(t, 6, merged.Total)
	assert.Equal(t, 4, merged.Completed)
	assert.Equal(t, 67, merged.Percent)

	// Merging with the zero value is a no-op on the counts.
	same := a.Merge(Progress{})
	assert.Equal(t, a, same)
}

func TestTaskProgress_UnsplitTask(t *testing.T) {
	incomplete := TaskProgress(Task{Completed: false}, nil)
	assert.Equal(t, NewProgress(1, 0), incomplete)

	complete := TaskProgress(Task{Completed: true}, nil)
	assert.Equal(t, NewProgress(1, 1), complete)
}

func TestTaskProgress_SplitTaskIgnoresOwnFlag(t *testing.T) {
	// The task flag says complete but only one of two parts is done.
	task := Task{Completed: true}
	parts := []TaskPart{
		{Letter: "a", Completed: true},
		{Letter: "b", Completed: false},
	}

	p := TaskProgress(task, parts)
	assert.Equal(t, 2, p.Total)
	assert.Equal(t, 1, p.Completed)
	assert.Equal(t, 50, p.Percent)
}

func TestEffectiveCompleted(t *testing.T) {
	tests := []struct {
		name  string
		task  Task
		parts []TaskPart
		want  bool
	}{
		{name: "unsplit incomplete", task: Task{Completed: false}, want: false},
		{name: "unsplit complete", task: Task{Completed: true}, want: true},
		{
			name:  "split with incomplete part overrides flag",
			task:  Task{Completed: true},
			parts: []TaskPart{{Completed: true}, {Completed: false}},
			want:  false,
		},
		{
			name:  "split with all parts done overrides flag",
			task:  Task{Completed: false},
			parts: []TaskPart{{Completed: true}, {Completed: true}},
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectiveCompleted(tt.task, tt.parts))
		})
	}
}
