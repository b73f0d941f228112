package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cascade/internal/domain"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    domain.TaskStatus
		wantErr bool
	}{
		{name: "pending", input: "pending", want: domain.StatusPending},
		{name: "in_progress", input: "in_progress", want: domain.StatusInProgress},
		{name: "completed", input: "completed", want: domain.StatusCompleted},
		{name: "blocked", input: "blocked", want: domain.StatusBlocked},
		{name: "empty", input: "", wantErr: true},
		{name: "unknown", input: "done", wantErr: true},
		{name: "wrong case", input: "Pending", wantErr: true},
		{name: "legacy spelling", input: "in-progress", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ParseStatus(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrInvalidStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTaskStatus_IsValid(t *testing.T) {
	for _, status := range domain.Statuses() {
		assert.True(t, status.IsValid(), "status %q", status)
	}
	assert.False(t, domain.TaskStatus("").IsValid())
	assert.False(t, domain.TaskStatus("cancelled").IsValid())
}

func TestTask_DependsOn(t *testing.T) {
	task := &domain.Task{
		ID:           "a",
		Dependencies: []string{"b", "c"},
	}

	assert.True(t, task.DependsOn("b"))
	assert.True(t, task.DependsOn("c"))
	assert.False(t, task.DependsOn("a"))
	assert.False(t, task.DependsOn(""))

	empty := &domain.Task{ID: "d"}
	assert.False(t, empty.DependsOn("a"))
}

func TestTask_Clone(t *testing.T) {
	task := &domain.Task{
		ID:           "a",
		Name:         "original",
		Tags:         map[string]string{"team": "infra"},
		Status:       domain.StatusPending,
		Dependencies: []string{"b"},
	}

	clone := task.Clone()
	require.Equal(t, task, clone)

	clone.Name = "changed"
	clone.Tags["team"] = "platform"
	clone.Dependencies[0] = "z"

	assert.Equal(t, "original", task.Name)
	assert.Equal(t, "infra", task.Tags["team"])
	assert.Equal(t, "b", task.Dependencies[0])
}
