package models

import (
	"testing"
	"time"
)

func TestChallengeStatusIsValid(t *testing.T) {
	for _, s := range []ChallengeStatus{StatusOpen, StatusOngoing, StatusCompleted} {
		if !s.IsValid() {
			t.Errorf("status %q should be valid", s)
		}
	}
	for _, s := range []ChallengeStatus{"", "archived", "OPEN"} {
		if s.IsValid() {
			t.Errorf("status %q should be invalid", s)
		}
	}
}

func TestHasParticipant(t *testing.T) {
	c := Challenge{Participants: []string{"a", "b"}}
	if !c.HasParticipant("a") {
		t.Error("expected participant a")
	}
	if c.HasParticipant("c") {
		t.Error("c never joined")
	}
}

func TestIsPastDeadline(t *testing.T) {
	past := Challenge{Deadline: time.Now().Add(-time.Hour)}
	future := Challenge{Deadline: time.Now().Add(time.Hour)}
	if !past.IsPastDeadline() {
		t.Error("deadline an hour ago is past")
	}
	if future.IsPastDeadline() {
		t.Error("deadline an hour ahead is not past")
	}
}

func TestUpdateRequestIsEmpty(t *testing.T) {
	if !(&UpdateChallengeRequest{}).IsEmpty() {
		t.Error("zero update should be empty")
	}
	title := "x"
	if (&UpdateChallengeRequest{Title: &title}).IsEmpty() {
		t.Error("update with a field should not be empty")
	}
}

func TestListFiltersOffset(t *testing.T) {
	f := ListFilters{Page: 3, Limit: 10}
	if f.Offset() != 20 {
		t.Errorf("offset: got %d, want 20", f.Offset())
	}
}
