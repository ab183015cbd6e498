package domain

import (
	"net/url"
	"time"
)

// SessionKey builds the composite store key for a shoot and room type.
// Both parts are percent-escaped so the "/" separator stays unambiguous
// even when IDs themselves contain slashes. No case normalization is
// applied: callers must be consistent about case and formatting, or they
// will address distinct sessions.
func SessionKey(shootID, roomType string) string {
	return url.PathEscape(shootID) + "/" + url.PathEscape(roomType)
}

// ShootSession holds per-(shoot, room) assessment memory: how many attempts
// have been made from the current camera angle, what the model said before,
// and which physical constraints of the space have been learned so far.
type ShootSession struct {
	ShootID         string             `json:"shoot_id"`
	RoomType        string             `json:"room_type"`
	AttemptCount    int                `json:"attempt_count"`
	History         []AssessmentRecord `json:"history"`
	Constraints     []string           `json:"constraints"`
	LastOrientation *Orientation       `json:"last_orientation,omitempty"`
	Accepted        bool               `json:"accepted"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// NewShootSession creates a zeroed session for the given key.
func NewShootSession(shootID, roomType string) *ShootSession {
	now := time.Now().UTC()
	return &ShootSession{
		ShootID:   shootID,
		RoomType:  roomType,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Key returns the composite store key for this session.
func (s *ShootSession) Key() string {
	return SessionKey(s.ShootID, s.RoomType)
}

// AddConstraint appends a constraint unless it is already known.
// Insertion order is preserved so responses stay deterministic.
func (s *ShootSession) AddConstraint(constraint string) {
	for _, c := range s.Constraints {
		if c == constraint {
			return
		}
	}
	s.Constraints = append(s.Constraints, constraint)
}

// RecentFeedback returns up to n feedback strings, most recent first.
func (s *ShootSession) RecentFeedback(n int) []string {
	if n <= 0 {
		return nil
	}
	var out []string
	for i := len(s.History) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.History[i].Feedback)
	}
	return out
}

// ResetAngle clears the attempt counter and history after a large camera
// movement. Constraints are facts about the space, not the angle, so they
// survive the reset.
func (s *ShootSession) ResetAngle() {
	s.AttemptCount = 0
	s.History = nil
}

// Append records a completed assessment and keeps the counter/history
// invariant: AttemptCount always equals len(History).
func (s *ShootSession) Append(rec AssessmentRecord) {
	s.History = append(s.History, rec)
	s.AttemptCount = len(s.History)
	s.UpdatedAt = time.Now().UTC()
}

// Clone returns a deep copy of the session. The orchestrator mutates a copy
// and persists it only after the model call succeeds, so a failed call never
// leaves a half-updated session behind.
func (s *ShootSession) Clone() *ShootSession {
	c := *s
	c.History = append([]AssessmentRecord(nil), s.History...)
	c.Constraints = append([]string(nil), s.Constraints...)
	c.LastOrientation = s.LastOrientation.Clone()
	return &c
}
