// Package refine orchestrates the text-transformation pipeline: protect
// structured regions, compile the rule set, detect point of view, call the
// generation service, parse the tagged reply, restore protected regions, and
// diff the result for review.
package refine

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"redline/internal/diff"
	"redline/internal/pov"
	"redline/internal/protect"
	"redline/internal/provider"
	"redline/internal/reply"
	"redline/internal/rules"
)

// ErrBusy means a refinement is already in flight. Concurrent invocations
// are rejected immediately, never queued.
var ErrBusy = errors.New("a refinement is already in progress")

// ErrEmptyInput means there was no text to refine.
var ErrEmptyInput = errors.New("no text to refine")

const defaultTimeout = 45 * time.Second

// Request is one refinement invocation.
type Request struct {
	// Text is the original text, untouched.
	Text string

	// Rules is the editorial rule selection.
	Rules rules.Set

	// Voice optionally declares the point of view; when empty the detector
	// runs on the protected-stripped text.
	Voice pov.Class
}

// Result is everything the caller needs for display, undo, and review.
type Result struct {
	Original  string
	Refined   string
	Changelog string
	Voice     pov.Class
	Segments  []diff.Segment
}

// Refiner owns the pipeline state: the provider client, the re-entrancy
// guard, and the call timeout. The guard lives here, on an explicit struct
// the caller owns, not in package globals.
type Refiner struct {
	client   provider.Client
	detector pov.Detector
	timeout  time.Duration
	log      *zap.Logger

	inFlight atomic.Bool
}

// Option configures a Refiner.
type Option func(*Refiner)

// WithTimeout sets the deadline for the external generation call.
func WithTimeout(d time.Duration) Option {
	return func(r *Refiner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithDetector overrides the point-of-view detector thresholds.
func WithDetector(d pov.Detector) Option {
	return func(r *Refiner) { r.detector = d }
}

// WithLogger sets the structured logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Refiner) {
		if log != nil {
			r.log = log
		}
	}
}

// New creates a Refiner around a provider client.
func New(client provider.Client, opts ...Option) *Refiner {
	r := &Refiner{
		client:   client,
		detector: pov.New(),
		timeout:  defaultTimeout,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refine runs the full pipeline once. At most one call may be in flight; a
// second call returns ErrBusy immediately. The external call is bounded by
// the configured timeout and never retried.
func (r *Refiner) Refine(ctx context.Context, req Request) (*Result, error) {
	if !r.inFlight.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer r.inFlight.Store(false)

	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyInput
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	stripped, blocks := protect.Strip(req.Text)
	ruleBlock := rules.Compile(req.Rules)

	voice := req.Voice
	if voice == "" {
		voice = r.detector.Detect(stripped)
	}

	r.log.Debug("refine request prepared",
		zap.Int("text_len", len(req.Text)),
		zap.Int("protected_blocks", len(blocks)),
		zap.String("voice", string(voice)),
	)

	raw, err := r.client.Complete(ctx, systemPrompt, buildUserPrompt(ruleBlock, voice, stripped))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = provider.ErrTimeout
		}
		r.log.Warn("generation call failed", zap.Error(err))
		return nil, err
	}
	if strings.TrimSpace(raw) == "" {
		return nil, provider.ErrEmptyResponse
	}

	parsed := reply.Parse(raw)
	refined := protect.Restore(parsed.Refined, blocks)

	result := &Result{
		Original:  req.Text,
		Refined:   refined,
		Changelog: parsed.Changelog,
		Voice:     voice,
		Segments:  diff.Compute(req.Text, refined),
	}

	r.log.Info("refinement complete",
		zap.Int("refined_len", len(refined)),
		zap.Bool("changed", diff.HasChanges(result.Segments)),
		zap.Bool("changelog", parsed.Changelog != ""),
	)
	return result, nil
}
