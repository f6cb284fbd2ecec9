package server

import (
	"sync"

	"github.com/sells-group/uav-enrich/internal/model"
	"github.com/sells-group/uav-enrich/internal/pipeline"
)

// session is the single in-memory working batch behind the HTTP surface.
type session struct {
	mu       sync.Mutex
	batch    *pipeline.Batch
	running  bool
	progress int
	summary  *pipeline.Summary
	lastErr  string
}

// sessionView is the JSON shape of GET /api/batch.
type sessionView struct {
	Records  []model.CompanyRecord `json:"records"`
	Progress int                   `json:"progress"`
	Running  bool                  `json:"running"`
	Summary  *summaryView          `json:"summary,omitempty"`
	Error    string                `json:"error,omitempty"`
}

type summaryView struct {
	Total      int     `json:"total"`
	Skipped    int     `json:"skipped"`
	Completed  int     `json:"completed"`
	Failed     int     `json:"failed"`
	DurationMs int64   `json:"duration_ms"`
	CostUSD    float64 `json:"cost_usd"`
}

func (s *session) view() sessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := sessionView{Records: []model.CompanyRecord{}, Running: s.running, Error: s.lastErr}
	if s.batch == nil {
		return v
	}
	v.Records = s.batch.Snapshot()
	v.Progress = s.progress
	if !s.running {
		v.Progress = settledProgress(v.Records)
	}
	if s.summary != nil {
		v.Summary = &summaryView{
			Total:      s.summary.Total,
			Skipped:    s.summary.Skipped,
			Completed:  s.summary.Completed,
			Failed:     s.summary.Failed,
			DurationMs: s.summary.Duration.Milliseconds(),
			CostUSD:    s.summary.CostUSD,
		}
	}
	return v
}

// settledProgress is the share of records in a terminal status.
func settledProgress(records []model.CompanyRecord) int {
	settled := 0
	for _, r := range records {
		if r.Status.Terminal() {
			settled++
		}
	}
	return pipeline.Progress(settled, len(records))
}
