package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"

	"github.com/ashureev/shotcoach/internal/assess"
	"github.com/ashureev/shotcoach/internal/domain"
	"github.com/google/uuid"
)

// scanner buffer sizing: base64 images make request lines large, and the
// worker echoes session history back, so lines well beyond bufio's default
// 64KB are normal.
const (
	scanInitialBuffer = 1 << 20  // 1MB
	scanMaxBuffer     = 64 << 20 // 64MB
)

// Relay runs a worker child process and satisfies assess.Assessor by
// speaking the NDJSON protocol over the worker's stdin/stdout. Callers
// cannot tell it apart from the in-process service.
type Relay struct {
	cmdPath string
	args    []string

	mu      sync.Mutex
	started bool
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	pending map[string]chan ResponseEnvelope
	exited  chan struct{}
}

// NewRelay creates a relay for the given worker binary. Start must be
// called before use.
func NewRelay(cmdPath string, args ...string) *Relay {
	return &Relay{
		cmdPath: cmdPath,
		args:    args,
		pending: make(map[string]chan ResponseEnvelope),
	}
}

// Start launches the worker process and the response reader.
func (r *Relay) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return nil
	}

	cmd := exec.CommandContext(ctx, r.cmdPath, r.args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return transportErr("open worker stdin", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return transportErr("open worker stdout", err)
	}
	// Worker logs go to stderr so stdout stays protocol-only; pass them
	// through to our own stderr.
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return transportErr(fmt.Sprintf("start worker %s", r.cmdPath), err)
	}

	r.cmd = cmd
	r.attach(stdin, stdout)
	slog.Info("Bridge worker started", "cmd", r.cmdPath, "pid", cmd.Process.Pid)
	return nil
}

// attach wires the relay to an already-open protocol stream and starts the
// response reader. Callers must hold r.mu.
func (r *Relay) attach(stdin io.WriteCloser, stdout io.Reader) {
	r.stdin = stdin
	r.exited = make(chan struct{})
	r.started = true
	go r.readLoop(stdout)
}

// readLoop dispatches worker response lines to their waiting callers.
func (r *Relay) readLoop(stdout io.Reader) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, scanInitialBuffer), scanMaxBuffer)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var resp ResponseEnvelope
		if err := json.Unmarshal(line, &resp); err != nil {
			slog.Warn("Bridge worker produced unparseable output", "error", err)
			continue
		}

		r.mu.Lock()
		ch, ok := r.pending[resp.ID]
		if ok {
			delete(r.pending, resp.ID)
		}
		r.mu.Unlock()

		if ok {
			ch <- resp
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Warn("Bridge worker stdout read failed", "error", err)
	}

	// Fail everything still in flight: the worker is gone.
	r.mu.Lock()
	close(r.exited)
	for id, ch := range r.pending {
		delete(r.pending, id)
		close(ch)
	}
	r.mu.Unlock()

	if r.cmd != nil {
		err := r.cmd.Wait()
		slog.Info("Bridge worker exited", "cmd", r.cmdPath, "error", err)
	}
}

// call sends one envelope and waits for its matching response.
func (r *Relay) call(ctx context.Context, req RequestEnvelope) (*ResponseEnvelope, error) {
	req.ID = uuid.NewString()
	ch := make(chan ResponseEnvelope, 1)

	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return nil, transportErr("bridge not started", nil)
	}
	select {
	case <-r.exited:
		r.mu.Unlock()
		return nil, transportErr("bridge worker exited", nil)
	default:
	}
	r.pending[req.ID] = ch

	line, err := json.Marshal(req)
	if err != nil {
		delete(r.pending, req.ID)
		r.mu.Unlock()
		return nil, transportErr("encode bridge request", err)
	}
	line = append(line, '\n')
	_, err = r.stdin.Write(line)
	r.mu.Unlock()
	if err != nil {
		r.forget(req.ID)
		return nil, transportErr("write to bridge worker", err)
	}

	select {
	case <-ctx.Done():
		r.forget(req.ID)
		return nil, transportErr("bridge call aborted", ctx.Err())
	case resp, ok := <-ch:
		if !ok {
			return nil, transportErr("bridge worker exited mid-call", nil)
		}
		if !resp.OK {
			if resp.Error != nil {
				return nil, resp.Error.toError()
			}
			return nil, transportErr("bridge worker reported failure without detail", nil)
		}
		return &resp, nil
	}
}

func (r *Relay) forget(id string) {
	r.mu.Lock()
	delete(r.pending, id)
	r.mu.Unlock()
}

// Assess implements assess.Assessor over the bridge.
func (r *Relay) Assess(ctx context.Context, req assess.Request) (*assess.Result, error) {
	resp, err := r.call(ctx, RequestEnvelope{Op: OpAssess, Assess: &req})
	if err != nil {
		return nil, err
	}
	if resp.Result == nil {
		return nil, transportErr("bridge assess response missing result", nil)
	}
	return resp.Result, nil
}

// Snapshot implements assess.Assessor over the bridge.
func (r *Relay) Snapshot(ctx context.Context, shootID, roomType string) (*domain.ShootSession, error) {
	resp, err := r.call(ctx, RequestEnvelope{
		Op:       OpSnapshot,
		Snapshot: &SnapshotParams{ShootID: shootID, RoomType: roomType},
	})
	if err != nil {
		return nil, err
	}
	return resp.Session, nil
}

// DeleteShoot implements assess.Assessor over the bridge.
func (r *Relay) DeleteShoot(ctx context.Context, shootID string) (int64, error) {
	resp, err := r.call(ctx, RequestEnvelope{
		Op:          OpDeleteShoot,
		DeleteShoot: &DeleteShootParams{ShootID: shootID},
	})
	if err != nil {
		return 0, err
	}
	if resp.Deleted == nil {
		return 0, transportErr("bridge delete response missing count", nil)
	}
	return *resp.Deleted, nil
}

// Close shuts the worker down by closing its stdin; the worker exits when
// its input drains.
func (r *Relay) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stdin != nil {
		return r.stdin.Close()
	}
	return nil
}

func transportErr(message string, err error) error {
	return assess.NewError(assess.KindTransport, message, err)
}
