// Package assess implements the assessment context manager: per-session
// memory, angle-reset detection, constraint extraction, progressive
// scoring, prompt assembly, and the orchestration around the external
// vision model.
package assess

import (
	"context"

	"github.com/ashureev/shotcoach/internal/domain"
)

// Request is one inbound photo assessment. ImageData rides as base64 in
// JSON transports.
type Request struct {
	ImageData   []byte              `json:"image"`
	MediaType   string              `json:"media_type,omitempty"`
	RoomType    string              `json:"room_type"`
	ShootID     string              `json:"shoot_id"`
	StackIndex  int                 `json:"stack_index,omitempty"`
	Orientation *domain.Orientation `json:"orientation,omitempty"`
}

// Validate checks required fields. It runs before any session is touched,
// so a bad request never creates or mutates state.
func (r *Request) Validate() error {
	if len(r.ImageData) == 0 {
		return ValidationError("image")
	}
	if r.RoomType == "" {
		return ValidationError("room_type")
	}
	if r.ShootID == "" {
		return ValidationError("shoot_id")
	}
	return nil
}

// Result is the structured outcome of one assessment.
type Result struct {
	Feedback     string   `json:"feedback"`
	Attempt      int      `json:"attempt_number"`
	AngleReset   bool     `json:"angle_reset"`
	Score        int      `json:"score"`
	Acceptable   bool     `json:"is_acceptable"`
	Constraints  []string `json:"constraints"`
	Improvements []string `json:"improvements"`
}

// Assessor is the operation surface shared by both transports: the
// in-process service and the subprocess bridge relay satisfy it
// identically, so callers cannot tell them apart.
type Assessor interface {
	Assess(ctx context.Context, req Request) (*Result, error)
	Snapshot(ctx context.Context, shootID, roomType string) (*domain.ShootSession, error)
	DeleteShoot(ctx context.Context, shootID string) (int64, error)
}
