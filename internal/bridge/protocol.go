// Package bridge relays assessment operations to a worker child process
// over a line-delimited JSON protocol: one JSON envelope per line in each
// direction, matched by request ID. It is a transport only; all business
// rules live in the assess package shared with the worker.
package bridge

import (
	"github.com/ashureev/shotcoach/internal/assess"
	"github.com/ashureev/shotcoach/internal/domain"
)

// Operation names carried in request envelopes.
const (
	OpAssess      = "assess"
	OpSnapshot    = "snapshot"
	OpDeleteShoot = "delete_shoot"
)

// RequestEnvelope is one request line sent to the worker.
type RequestEnvelope struct {
	ID          string             `json:"id"`
	Op          string             `json:"op"`
	Assess      *assess.Request    `json:"assess,omitempty"`
	Snapshot    *SnapshotParams    `json:"snapshot,omitempty"`
	DeleteShoot *DeleteShootParams `json:"delete_shoot,omitempty"`
}

// SnapshotParams identifies a session to read.
type SnapshotParams struct {
	ShootID  string `json:"shoot_id"`
	RoomType string `json:"room_type"`
}

// DeleteShootParams identifies a shoot to purge.
type DeleteShootParams struct {
	ShootID string `json:"shoot_id"`
}

// ResponseEnvelope is one response line from the worker.
type ResponseEnvelope struct {
	ID      string               `json:"id"`
	OK      bool                 `json:"ok"`
	Result  *assess.Result       `json:"result,omitempty"`
	Session *domain.ShootSession `json:"session,omitempty"`
	Deleted *int64               `json:"deleted,omitempty"`
	Error   *ErrorPayload        `json:"error,omitempty"`
}

// ErrorPayload carries a structured orchestration error across the process
// boundary without losing its kind.
type ErrorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// toError reconstructs an assess error from a payload.
func (p *ErrorPayload) toError() error {
	return assess.NewError(assess.ErrorKind(p.Kind), p.Message, nil)
}

// NewErrorPayload flattens an error into a wire payload.
func NewErrorPayload(err error) *ErrorPayload {
	return &ErrorPayload{
		Kind:    string(assess.KindOf(err)),
		Message: assess.MessageOf(err),
	}
}
