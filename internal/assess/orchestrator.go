package assess

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ashureev/shotcoach/internal/domain"
	"github.com/ashureev/shotcoach/internal/events"
	"github.com/ashureev/shotcoach/internal/store"
	"github.com/ashureev/shotcoach/internal/vision"
)

const defaultVisionTimeout = 30 * time.Second

// Service orchestrates one assessment call end to end: session resolution,
// angle-reset decision, prompt assembly, the vision call, constraint
// extraction, scoring, and persistence.
type Service struct {
	store   store.Store
	vision  vision.Client
	hub     *events.Hub
	policy  AcceptancePolicy
	timeout time.Duration

	// sessionLocks serializes read-modify-write cycles per session key so
	// concurrent calls for the same (shoot, room) cannot lose updates.
	// Distinct keys proceed fully concurrently.
	sessionLocks sync.Map
}

// Option configures a Service.
type Option func(*Service)

// WithEventsHub publishes each successful assessment to the hub.
func WithEventsHub(hub *events.Hub) Option {
	return func(s *Service) { s.hub = hub }
}

// WithAcceptancePolicy selects the acceptability policy for this deployment.
func WithAcceptancePolicy(policy AcceptancePolicy) Option {
	return func(s *Service) { s.policy = policy }
}

// WithVisionTimeout bounds the external vision call.
func WithVisionTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// NewService creates the assessment orchestrator.
func NewService(st store.Store, vc vision.Client, opts ...Option) *Service {
	s := &Service{
		store:   st,
		vision:  vc,
		policy:  PolicyAttempts,
		timeout: defaultVisionTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) lockKey(key string) *sync.Mutex {
	mu, _ := s.sessionLocks.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Assess runs one assessment call. Session state is mutated on a copy and
// persisted only after the vision call succeeds, so upstream failures and
// timeouts leave the session exactly as it was.
func (s *Service) Assess(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key := domain.SessionKey(req.ShootID, req.RoomType)
	mu := s.lockKey(key)
	mu.Lock()
	defer mu.Unlock()

	current, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, NewError(KindInternal, "load session", err)
	}
	if current == nil {
		current = domain.NewShootSession(req.ShootID, req.RoomType)
	}

	work := current.Clone()

	dissimilarity := Dissimilarity(work.LastOrientation, req.Orientation)
	reset := work.AttemptCount > 0 && dissimilarity > resetThreshold
	if reset {
		work.ResetAngle()
	}
	attempt := work.AttemptCount + 1

	prompt := BuildPrompt(PromptInput{
		RoomType:       req.RoomType,
		Attempt:        attempt,
		AngleReset:     reset,
		RecentFeedback: work.RecentFeedback(maxRecentFeedback),
		Constraints:    work.Constraints,
	})

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	feedback, err := s.vision.Assess(callCtx, vision.Request{
		System:    systemInstruction,
		Prompt:    prompt,
		ImageData: req.ImageData,
		MediaType: req.MediaType,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, NewError(KindTimeout, "vision service call timed out", err)
		}
		return nil, NewError(KindUpstream, "vision service call failed", err)
	}

	for _, tag := range ExtractConstraints(feedback) {
		work.AddConstraint(tag)
	}

	score := Score(attempt)
	acceptable := Acceptable(s.policy, attempt, feedback)

	work.Append(domain.NewAssessmentRecord(attempt, feedback, req.Orientation, reset))
	work.LastOrientation = req.Orientation.Clone()
	if acceptable {
		work.Accepted = true
	}

	if err := s.store.Put(ctx, work); err != nil {
		return nil, NewError(KindInternal, "persist session", err)
	}

	result := &Result{
		Feedback:     feedback,
		Attempt:      attempt,
		AngleReset:   reset,
		Score:        score,
		Acceptable:   acceptable,
		Constraints:  append([]string{}, work.Constraints...),
		Improvements: improvements(feedback, acceptable),
	}

	slog.Info("Photo assessed",
		"shoot_id", req.ShootID,
		"room_type", req.RoomType,
		"attempt", attempt,
		"angle_reset", reset,
		"dissimilarity", dissimilarity,
		"score", score,
		"acceptable", acceptable,
	)

	if s.hub != nil {
		s.hub.Publish(events.Event{
			ShootID:    req.ShootID,
			RoomType:   req.RoomType,
			Attempt:    attempt,
			AngleReset: reset,
			Score:      score,
			Acceptable: acceptable,
			Feedback:   feedback,
			Timestamp:  time.Now().UTC(),
		})
	}

	return result, nil
}

// Snapshot returns the current session for a key, or (nil, nil) when the
// session does not exist.
func (s *Service) Snapshot(ctx context.Context, shootID, roomType string) (*domain.ShootSession, error) {
	sess, err := s.store.Get(ctx, domain.SessionKey(shootID, roomType))
	if err != nil {
		return nil, NewError(KindInternal, "load session", err)
	}
	return sess, nil
}

// DeleteShoot removes every room session for a shoot.
func (s *Service) DeleteShoot(ctx context.Context, shootID string) (int64, error) {
	if shootID == "" {
		return 0, ValidationError("shoot_id")
	}
	removed, err := s.store.DeleteShoot(ctx, shootID)
	if err != nil {
		return 0, NewError(KindInternal, "delete shoot sessions", err)
	}
	slog.Info("Shoot sessions deleted", "shoot_id", shootID, "count", removed)
	return removed, nil
}

const maxImprovements = 3

// improvements turns feedback into a short actionable list when the shot
// was not accepted. Accepted shots get an empty list.
func improvements(feedback string, acceptable bool) []string {
	// Always an array, never null, even when the feedback yields nothing.
	out := []string{}
	if acceptable {
		return out
	}
	for _, part := range strings.FieldsFunc(feedback, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	}) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
		if len(out) == maxImprovements {
			break
		}
	}
	return out
}
