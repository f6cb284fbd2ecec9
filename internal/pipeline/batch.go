package pipeline

import (
	"sync"

	"github.com/sells-group/uav-enrich/internal/model"
)

// Batch owns an ordered record set. Readers only see deep-copied snapshots;
// the unexported mutators are reserved for the Orchestrator.
type Batch struct {
	mu      sync.RWMutex
	records []model.CompanyRecord
}

// NewBatch takes ownership of a copy of records.
func NewBatch(records []model.CompanyRecord) *Batch {
	return &Batch{records: model.CloneRecords(records)}
}

// Len returns the number of records in the batch.
func (b *Batch) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.records)
}

// Snapshot returns a deep copy of every record in batch order.
func (b *Batch) Snapshot() []model.CompanyRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return model.CloneRecords(b.records)
}

// Record returns a copy of the record at index i.
func (b *Batch) Record(i int) model.CompanyRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.records[i].Clone()
}

// Counts tallies records by status.
func (b *Batch) Counts() map[model.Status]int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[model.Status]int, 4)
	for _, r := range b.records {
		out[r.Status]++
	}
	return out
}

// ResetErrors moves every errored record back to pending and returns how
// many were reset. Attributes and sources are left as they were.
func (b *Batch) ResetErrors() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for i := range b.records {
		if b.records[i].Status == model.StatusError {
			b.records[i].Status = model.StatusPending
			b.records[i].ErrorMessage = ""
			n++
		}
	}
	return n
}

func (b *Batch) markProcessing(i int) model.CompanyRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records[i].Status = model.StatusProcessing
	return b.records[i].Clone()
}

func (b *Batch) markCompleted(i int, attrs map[model.Field]string, sources []string) model.CompanyRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := &b.records[i]
	r.Attributes = attrs
	r.Sources = sources
	r.Status = model.StatusCompleted
	r.ErrorMessage = ""
	return r.Clone()
}

func (b *Batch) markError(i int, msg string) model.CompanyRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := &b.records[i]
	r.Status = model.StatusError
	r.ErrorMessage = msg
	return r.Clone()
}
