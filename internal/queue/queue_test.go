package queue

import (
	"encoding/json"
	"testing"
	"time"
)

func TestJobSerialization(t *testing.T) {
	job := Job{
		ID:          "7f3c2a10-9c4d-4a1e-8b6f-0d5e4c3b2a19",
		ChallengeID: "1a2b3c4d-5e6f-4708-9a0b-c1d2e3f4a5b6",
	}

	raw, err := json.Marshal(job)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	// The member format is the queue's durable wire format; jobs written by
	// an older process must stay readable
	var decoded Job
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded != job {
		t.Errorf("round trip changed job: %+v != %+v", decoded, job)
	}

	var fields map[string]string
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("member is not a flat JSON object: %v", err)
	}
	if fields["id"] != job.ID || fields["challenge_id"] != job.ChallengeID {
		t.Errorf("unexpected member fields: %v", fields)
	}
}

func TestFireTimeScoreRoundTrip(t *testing.T) {
	// Scores are unix milliseconds; converting back must not lose the fire
	// time beyond millisecond precision
	fireAt := time.Date(2027, 3, 15, 23, 59, 0, 0, time.UTC)

	score := float64(fireAt.UnixMilli())
	restored := time.UnixMilli(int64(score))

	if !restored.Equal(fireAt) {
		t.Errorf("fire time drifted through the score: %v != %v", restored, fireAt)
	}
}

func TestNewDelayedQueueKeyNaming(t *testing.T) {
	q := NewDelayedQueue(nil, "challenge-queue")
	if q.key != "challenge-queue:delayed" {
		t.Errorf("unexpected queue key: %s", q.key)
	}
}
