package domain

import (
	"testing"
)

func TestAddConstraintDeduplicates(t *testing.T) {
	s := NewShootSession("shoot-1", "kitchen")

	s.AddConstraint("cannot move back further")
	s.AddConstraint("wall directly behind camera position")
	s.AddConstraint("cannot move back further")

	if len(s.Constraints) != 2 {
		t.Fatalf("expected 2 constraints, got %d: %v", len(s.Constraints), s.Constraints)
	}
	if s.Constraints[0] != "cannot move back further" {
		t.Errorf("insertion order not preserved: %v", s.Constraints)
	}
	if s.Constraints[1] != "wall directly behind camera position" {
		t.Errorf("insertion order not preserved: %v", s.Constraints)
	}
}

func TestAppendKeepsCounterInvariant(t *testing.T) {
	s := NewShootSession("shoot-1", "kitchen")

	for i := 1; i <= 3; i++ {
		s.Append(NewAssessmentRecord(i, "feedback", nil, false))
		if s.AttemptCount != len(s.History) {
			t.Fatalf("attempt %d: counter %d != history length %d", i, s.AttemptCount, len(s.History))
		}
	}
}

func TestResetAngleKeepsConstraints(t *testing.T) {
	s := NewShootSession("shoot-1", "living room")
	s.AddConstraint("cannot move back further")
	s.Append(NewAssessmentRecord(1, "step left", nil, false))
	s.Append(NewAssessmentRecord(2, "lower the camera", nil, false))

	s.ResetAngle()

	if s.AttemptCount != 0 {
		t.Errorf("expected attempt count 0 after reset, got %d", s.AttemptCount)
	}
	if len(s.History) != 0 {
		t.Errorf("expected empty history after reset, got %d records", len(s.History))
	}
	if len(s.Constraints) != 1 {
		t.Errorf("constraints must survive a reset, got %v", s.Constraints)
	}
}

func TestRecentFeedbackMostRecentFirst(t *testing.T) {
	s := NewShootSession("shoot-1", "bedroom")
	s.Append(NewAssessmentRecord(1, "first", nil, false))
	s.Append(NewAssessmentRecord(2, "second", nil, false))
	s.Append(NewAssessmentRecord(3, "third", nil, false))

	got := s.RecentFeedback(2)
	if len(got) != 2 || got[0] != "third" || got[1] != "second" {
		t.Errorf("expected [third second], got %v", got)
	}

	if got := s.RecentFeedback(0); got != nil {
		t.Errorf("expected nil for n=0, got %v", got)
	}
	if got := s.RecentFeedback(10); len(got) != 3 {
		t.Errorf("expected all 3 entries, got %v", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := NewShootSession("shoot-1", "kitchen")
	s.AddConstraint("cannot move back further")
	s.Append(NewAssessmentRecord(1, "original", nil, false))
	s.LastOrientation = &Orientation{Pitch: 1, Yaw: 2, Roll: 3}

	c := s.Clone()
	c.AddConstraint("wall directly behind camera position")
	c.Append(NewAssessmentRecord(2, "copy only", nil, false))
	c.LastOrientation.Pitch = 90

	if len(s.Constraints) != 1 {
		t.Errorf("clone mutation leaked into original constraints: %v", s.Constraints)
	}
	if len(s.History) != 1 || s.AttemptCount != 1 {
		t.Errorf("clone mutation leaked into original history")
	}
	if s.LastOrientation.Pitch != 1 {
		t.Errorf("clone mutation leaked into original orientation")
	}
}
