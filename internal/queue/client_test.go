package queue

import (
	"encoding/json"
	"testing"

	"siteintel/internal/models"
)

func TestNameFor(t *testing.T) {
	tests := []struct {
		priority int
		expected string
	}{
		{models.PriorityHigh, QueueHigh},
		{models.PriorityNormal, QueueNormal},
		{models.PriorityLow, QueueLow},
		{0, QueueLow},
	}
	for _, tt := range tests {
		if got := NameFor(tt.priority); got != tt.expected {
			t.Errorf("NameFor(%d) = %q, want %q", tt.priority, got, tt.expected)
		}
	}
	if queueOrder[0] != QueueHigh || queueOrder[len(queueOrder)-1] != QueueLow {
		t.Error("queues must be polled from high to low")
	}
}

func TestDecodeTask(t *testing.T) {
	raw, _ := json.Marshal(Task{JobID: "job-1", Priority: 3})
	task, err := DecodeTask(string(raw))
	if err != nil || task.JobID != "job-1" || task.Priority != 3 {
		t.Errorf("DecodeTask() = %+v, %v", task, err)
	}

	for _, bad := range []string{"not json", `{"priority":2}`} {
		if _, err := DecodeTask(bad); err == nil {
			t.Errorf("DecodeTask(%q) should fail", bad)
		}
	}
}
