package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/ashureev/shotcoach/internal/assess"
)

// Worker is the child-process side of the bridge: it reads request
// envelopes line by line, runs them against the shared assessment core,
// and writes one response line per request.
type Worker struct {
	assessor assess.Assessor

	writeMu sync.Mutex
	out     io.Writer
}

// NewWorker creates a worker serving the given assessor.
func NewWorker(assessor assess.Assessor, out io.Writer) *Worker {
	return &Worker{assessor: assessor, out: out}
}

// Run processes requests until input is exhausted or the context ends.
// Requests are handled concurrently; per-key ordering is the orchestrator's
// concern, same as in HTTP mode.
func (w *Worker) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, scanInitialBuffer), scanMaxBuffer)

	var wg sync.WaitGroup
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := append([]byte(nil), scanner.Bytes()...)
		if len(line) == 0 {
			continue
		}

		var req RequestEnvelope
		if err := json.Unmarshal(line, &req); err != nil {
			slog.Warn("Discarding unparseable bridge request", "error", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			w.writeResponse(w.handle(ctx, req))
		}()
	}
	wg.Wait()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read bridge input: %w", err)
	}
	return nil
}

func (w *Worker) handle(ctx context.Context, req RequestEnvelope) ResponseEnvelope {
	resp := ResponseEnvelope{ID: req.ID}

	switch req.Op {
	case OpAssess:
		if req.Assess == nil {
			resp.Error = &ErrorPayload{Kind: string(assess.KindValidation), Message: "assess payload missing"}
			return resp
		}
		result, err := w.assessor.Assess(ctx, *req.Assess)
		if err != nil {
			resp.Error = NewErrorPayload(err)
			return resp
		}
		resp.OK = true
		resp.Result = result

	case OpSnapshot:
		if req.Snapshot == nil {
			resp.Error = &ErrorPayload{Kind: string(assess.KindValidation), Message: "snapshot payload missing"}
			return resp
		}
		sess, err := w.assessor.Snapshot(ctx, req.Snapshot.ShootID, req.Snapshot.RoomType)
		if err != nil {
			resp.Error = NewErrorPayload(err)
			return resp
		}
		resp.OK = true
		resp.Session = sess

	case OpDeleteShoot:
		if req.DeleteShoot == nil {
			resp.Error = &ErrorPayload{Kind: string(assess.KindValidation), Message: "delete_shoot payload missing"}
			return resp
		}
		removed, err := w.assessor.DeleteShoot(ctx, req.DeleteShoot.ShootID)
		if err != nil {
			resp.Error = NewErrorPayload(err)
			return resp
		}
		resp.OK = true
		resp.Deleted = &removed

	default:
		resp.Error = &ErrorPayload{
			Kind:    string(assess.KindValidation),
			Message: fmt.Sprintf("unknown operation %q", req.Op),
		}
	}

	return resp
}

// writeResponse serializes one envelope as a single line. Writes are
// serialized so concurrent handlers cannot interleave lines.
func (w *Worker) writeResponse(resp ResponseEnvelope) {
	line, err := json.Marshal(resp)
	if err != nil {
		slog.Error("Failed to encode bridge response", "error", err, "id", resp.ID)
		return
	}
	line = append(line, '\n')

	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	if _, err := w.out.Write(line); err != nil {
		slog.Error("Failed to write bridge response", "error", err, "id", resp.ID)
	}
}
