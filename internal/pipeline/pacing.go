package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/uav-enrich/internal/config"
	"github.com/sells-group/uav-enrich/internal/research"
)

// DefaultPacingDelay is the minimum gap between consecutive research calls.
const DefaultPacingDelay = 500 * time.Millisecond

// Pacer bounds the request rate to the research service. Wait is called
// between two consecutive record attempts, never after the last one. prev is
// the error of the attempt that just finished, or nil.
type Pacer interface {
	Wait(ctx context.Context, prev error) error
}

// FixedDelay sleeps a constant duration between attempts.
type FixedDelay struct {
	Delay time.Duration
}

// Wait implements Pacer.
func (p FixedDelay) Wait(ctx context.Context, prev error) error {
	return sleep(ctx, max(p.Delay, retryAfter(prev)))
}

// TokenBucket paces attempts with a token-bucket limiter.
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket allows perSecond attempts per second with the given burst.
// The first attempt of a run is never paced, so it is charged against the
// bucket up front.
func NewTokenBucket(perSecond float64, burst int) *TokenBucket {
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)
	limiter.Allow()
	return &TokenBucket{limiter: limiter}
}

// Wait implements Pacer.
func (p *TokenBucket) Wait(ctx context.Context, prev error) error {
	if err := sleep(ctx, retryAfter(prev)); err != nil {
		return err
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "pacing: token bucket wait")
	}
	return nil
}

// NewPacer builds the pacing policy selected in cfg.
func NewPacer(cfg config.PipelineConfig) (Pacer, error) {
	switch cfg.Pacing {
	case "", "fixed":
		delay := time.Duration(cfg.PacingDelayMs) * time.Millisecond
		if cfg.PacingDelayMs <= 0 {
			delay = DefaultPacingDelay
		}
		return FixedDelay{Delay: delay}, nil
	case "token_bucket":
		if cfg.RatePerSec <= 0 {
			return nil, eris.Errorf("pacing: rate_per_sec must be positive, got %v", cfg.RatePerSec)
		}
		return NewTokenBucket(cfg.RatePerSec, cfg.RateBurst), nil
	case "none":
		return FixedDelay{}, nil
	default:
		return nil, eris.Errorf("pacing: unknown policy %q", cfg.Pacing)
	}
}

// retryAfter extracts a provider-reported retry delay from err.
func retryAfter(err error) time.Duration {
	var rerr *research.Error
	if errors.As(err, &rerr) {
		return rerr.RetryAfter
	}
	return 0
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
