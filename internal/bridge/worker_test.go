package bridge

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ashureev/shotcoach/internal/assess"
	"github.com/ashureev/shotcoach/internal/domain"
)

type stubAssessor struct {
	result  *assess.Result
	session *domain.ShootSession
	deleted int64
	err     error
}

func (s *stubAssessor) Assess(ctx context.Context, req assess.Request) (*assess.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubAssessor) Snapshot(ctx context.Context, shootID, roomType string) (*domain.ShootSession, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

func (s *stubAssessor) DeleteShoot(ctx context.Context, shootID string) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.deleted, nil
}

// runWorker feeds the envelopes through a worker and returns responses
// indexed by request ID, since handlers run concurrently.
func runWorker(t *testing.T, sa *stubAssessor, envelopes ...RequestEnvelope) map[string]ResponseEnvelope {
	t.Helper()

	var in bytes.Buffer
	for _, env := range envelopes {
		line, err := json.Marshal(env)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		in.Write(line)
		in.WriteByte('\n')
	}

	var out bytes.Buffer
	if err := NewWorker(sa, &out).Run(context.Background(), &in); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	responses := make(map[string]ResponseEnvelope)
	scanner := bufio.NewScanner(strings.NewReader(out.String()))
	for scanner.Scan() {
		var resp ResponseEnvelope
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal response line %q: %v", scanner.Text(), err)
		}
		responses[resp.ID] = resp
	}
	return responses
}

func TestWorkerAssess(t *testing.T) {
	sa := &stubAssessor{result: &assess.Result{Feedback: "Tilt down slightly.", Attempt: 1, Score: 75}}

	responses := runWorker(t, sa, RequestEnvelope{
		ID: "req-1",
		Op: OpAssess,
		Assess: &assess.Request{
			ImageData: []byte("jpeg"),
			RoomType:  "kitchen",
			ShootID:   "shoot-1",
		},
	})

	resp, ok := responses["req-1"]
	if !ok {
		t.Fatalf("no response for req-1: %v", responses)
	}
	if !resp.OK || resp.Result == nil {
		t.Fatalf("expected ok result, got %+v", resp)
	}
	if resp.Result.Attempt != 1 || resp.Result.Score != 75 {
		t.Errorf("unexpected result: %+v", resp.Result)
	}
}

func TestWorkerErrorCrossesBoundaryWithKind(t *testing.T) {
	sa := &stubAssessor{err: assess.NewError(assess.KindTimeout, "vision service call timed out", nil)}

	responses := runWorker(t, sa, RequestEnvelope{
		ID:     "req-1",
		Op:     OpAssess,
		Assess: &assess.Request{ImageData: []byte("jpeg"), RoomType: "kitchen", ShootID: "shoot-1"},
	})

	resp := responses["req-1"]
	if resp.OK || resp.Error == nil {
		t.Fatalf("expected error envelope, got %+v", resp)
	}
	if resp.Error.Kind != string(assess.KindTimeout) {
		t.Errorf("error kind lost in transit: %+v", resp.Error)
	}

	reconstructed := resp.Error.toError()
	if assess.KindOf(reconstructed) != assess.KindTimeout {
		t.Errorf("reconstructed error has kind %q", assess.KindOf(reconstructed))
	}
}

func TestWorkerSnapshotAndDelete(t *testing.T) {
	sess := domain.NewShootSession("shoot-1", "kitchen")
	sess.AttemptCount = 2
	sa := &stubAssessor{session: sess, deleted: 4}

	responses := runWorker(t, sa,
		RequestEnvelope{ID: "snap", Op: OpSnapshot, Snapshot: &SnapshotParams{ShootID: "shoot-1", RoomType: "kitchen"}},
		RequestEnvelope{ID: "del", Op: OpDeleteShoot, DeleteShoot: &DeleteShootParams{ShootID: "shoot-1"}},
	)

	snap := responses["snap"]
	if !snap.OK || snap.Session == nil || snap.Session.AttemptCount != 2 {
		t.Errorf("unexpected snapshot response: %+v", snap)
	}

	del := responses["del"]
	if !del.OK || del.Deleted == nil || *del.Deleted != 4 {
		t.Errorf("unexpected delete response: %+v", del)
	}
}

func TestWorkerUnknownOperation(t *testing.T) {
	responses := runWorker(t, &stubAssessor{}, RequestEnvelope{ID: "req-1", Op: "restart"})

	resp := responses["req-1"]
	if resp.OK || resp.Error == nil {
		t.Fatalf("expected error envelope, got %+v", resp)
	}
	if resp.Error.Kind != string(assess.KindValidation) {
		t.Errorf("unknown op should map to a validation error: %+v", resp.Error)
	}
}

func TestWorkerMissingPayload(t *testing.T) {
	responses := runWorker(t, &stubAssessor{}, RequestEnvelope{ID: "req-1", Op: OpAssess})

	resp := responses["req-1"]
	if resp.OK || resp.Error == nil || resp.Error.Kind != string(assess.KindValidation) {
		t.Errorf("missing payload should map to a validation error: %+v", resp)
	}
}

func TestWorkerSkipsUnparseableLines(t *testing.T) {
	in := strings.NewReader("not json at all\n" +
		`{"id":"req-1","op":"delete_shoot","delete_shoot":{"shoot_id":"shoot-1"}}` + "\n")

	var out bytes.Buffer
	if err := NewWorker(&stubAssessor{deleted: 1}, &out).Run(context.Background(), in); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected exactly one response line, got %d: %q", len(lines), out.String())
	}

	var resp ResponseEnvelope
	if err := json.Unmarshal([]byte(lines[0]), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.ID != "req-1" || !resp.OK {
		t.Errorf("unexpected response: %+v", resp)
	}
}
