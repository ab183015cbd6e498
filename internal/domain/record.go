package domain

import (
	"time"

	"github.com/google/uuid"
)

// AssessmentRecord is one completed evaluation of a submitted photo.
// Records are immutable once appended to a session's history.
type AssessmentRecord struct {
	ID          string       `json:"id"`
	Timestamp   time.Time    `json:"timestamp"`
	Attempt     int          `json:"attempt"`
	Feedback    string       `json:"feedback"`
	Orientation *Orientation `json:"orientation,omitempty"`
	AfterReset  bool         `json:"after_reset"`
}

// NewAssessmentRecord builds a record for the given attempt.
func NewAssessmentRecord(attempt int, feedback string, orientation *Orientation, afterReset bool) AssessmentRecord {
	return AssessmentRecord{
		ID:          uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		Attempt:     attempt,
		Feedback:    feedback,
		Orientation: orientation.Clone(),
		AfterReset:  afterReset,
	}
}
