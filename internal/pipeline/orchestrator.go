package pipeline

import (
	"context"
	"math"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/uav-enrich/internal/model"
	"github.com/sells-group/uav-enrich/internal/research"
)

// FailureMessage is recorded on a record whose research call failed.
const FailureMessage = "Failed to fetch data"

// Event is published after every record transition, in processing order.
type Event struct {
	// Index is the position of Record in the batch.
	Index  int
	Record model.CompanyRecord
	// Records is a snapshot of the whole batch after the transition.
	Records []model.CompanyRecord
	// Progress is the settled percentage, 0-100.
	Progress int
}

// Summary describes one Run.
type Summary struct {
	Total     int
	Skipped   int
	Completed int
	Failed    int
	Duration  time.Duration
	// CostUSD is the estimated research spend of this run.
	CostUSD float64
}

// Observer receives events synchronously from the orchestrator goroutine.
type Observer func(Event)

// Orchestrator drives a Batch through research and extraction, one record at
// a time in batch order.
type Orchestrator struct {
	researcher  research.Researcher
	pacer       Pacer
	callTimeout time.Duration
	observer    Observer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPacer overrides the default fixed 500ms pacing.
func WithPacer(p Pacer) Option {
	return func(o *Orchestrator) {
		o.pacer = p
	}
}

// WithCallTimeout bounds each research call. Zero means no bound.
func WithCallTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.callTimeout = d
	}
}

// WithObserver registers the event callback.
func WithObserver(fn Observer) Option {
	return func(o *Orchestrator) {
		o.observer = fn
	}
}

// NewOrchestrator creates an Orchestrator around r.
func NewOrchestrator(r research.Researcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		researcher: r,
		pacer:      FixedDelay{Delay: DefaultPacingDelay},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run processes every record of b that is not already completed. Records
// in pending or error status are attempted exactly once. A cancelled ctx
// stops the run at the next checkpoint and Run returns the context error;
// records not yet reached stay as they were.
func (o *Orchestrator) Run(ctx context.Context, b *Batch) (Summary, error) {
	start := time.Now()
	records := b.Snapshot()
	sum := Summary{Total: len(records)}

	for _, r := range records {
		if r.Status == model.StatusCompleted {
			sum.Skipped++
		}
	}
	settled := sum.Skipped

	zap.L().Info("pipeline: batch run starting",
		zap.Int("total", sum.Total),
		zap.Int("skipped", sum.Skipped),
	)

	finish := func(err error) (Summary, error) {
		sum.Duration = time.Since(start)
		fields := []zap.Field{
			zap.Int("total", sum.Total),
			zap.Int("skipped", sum.Skipped),
			zap.Int("completed", sum.Completed),
			zap.Int("failed", sum.Failed),
			zap.Duration("duration", sum.Duration),
			zap.Float64("cost_usd", sum.CostUSD),
		}
		if err != nil {
			zap.L().Warn("pipeline: batch run stopped", append(fields, zap.Error(err))...)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return sum, ctxErr
			}
			return sum, eris.Wrap(err, "pipeline: run")
		}
		zap.L().Info("pipeline: batch run complete", fields...)
		return sum, nil
	}

	var prevErr error
	attempted := false
	for i, r := range records {
		if r.Status == model.StatusCompleted {
			continue
		}

		if attempted {
			if err := o.pacer.Wait(ctx, prevErr); err != nil {
				return finish(err)
			}
		}
		if err := ctx.Err(); err != nil {
			return finish(err)
		}

		rec := b.markProcessing(i)
		o.publish(b, i, rec, settled, sum.Total)
		attempted = true

		res, err := o.research(ctx, rec.Name)
		prevErr = err
		if err != nil {
			zap.L().Warn("pipeline: research failed",
				zap.String("company", rec.Name),
				zap.Int("index", i),
				zap.String("kind", string(research.KindOf(err))),
				zap.Error(err),
			)
			rec = b.markError(i, FailureMessage)
			sum.Failed++
		} else {
			rec = b.markCompleted(i, Extract(res.Body), res.Sources)
			sum.Completed++
			sum.CostUSD += res.CostUSD
			zap.L().Debug("pipeline: record completed",
				zap.String("company", rec.Name),
				zap.Int("index", i),
				zap.Int("sources", len(res.Sources)),
			)
		}
		settled++
		o.publish(b, i, rec, settled, sum.Total)

		if err := ctx.Err(); err != nil {
			return finish(err)
		}
	}

	return finish(nil)
}

func (o *Orchestrator) research(ctx context.Context, name string) (*research.Result, error) {
	if o.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.callTimeout)
		defer cancel()
	}
	return o.researcher.Research(ctx, name)
}

func (o *Orchestrator) publish(b *Batch, i int, rec model.CompanyRecord, settled, total int) {
	if o.observer == nil {
		return
	}
	o.observer(Event{
		Index:    i,
		Record:   rec,
		Records:  b.Snapshot(),
		Progress: Progress(settled, total),
	})
}

// StartProgress is the progress a run over records reports before its first
// transition. Only completed records count: error records are selected again.
func StartProgress(records []model.CompanyRecord) int {
	done := 0
	for _, r := range records {
		if r.Status == model.StatusCompleted {
			done++
		}
	}
	return Progress(done, len(records))
}

// Progress converts a settled count into a whole percentage. It reports 100
// only when every record is settled; an empty batch is fully settled.
func Progress(settled, total int) int {
	if total <= 0 {
		return 100
	}
	pct := int(math.Round(float64(settled) * 100 / float64(total)))
	if pct >= 100 && settled < total {
		return 99
	}
	return pct
}
