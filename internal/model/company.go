package model

import (
	"slices"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a company record.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// UnknownCompany is substituted when an ingested row has no usable name.
const UnknownCompany = "Unknown Company"

// Terminal reports whether the status is final for the current run.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusError:
		return true
	default:
		return false
	}
}

// CompanyRecord is one row of a batch under enrichment.
type CompanyRecord struct {
	ID           string           `json:"id" yaml:"id"`
	Name         string           `json:"name" yaml:"name"`
	Attributes   map[Field]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Sources      []string         `json:"sources,omitempty" yaml:"sources,omitempty"`
	Status       Status           `json:"status" yaml:"status"`
	ErrorMessage string           `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewCompanyRecord returns a pending record with a fresh ID.
func NewCompanyRecord(name string) CompanyRecord {
	return CompanyRecord{
		ID:     uuid.New().String(),
		Name:   name,
		Status: StatusPending,
	}
}

// Attribute returns the value for f, or "" when the field is absent.
func (r CompanyRecord) Attribute(f Field) string {
	if r.Attributes == nil {
		return ""
	}
	return r.Attributes[f]
}

// Clone returns a deep copy that shares no maps or slices with r.
func (r CompanyRecord) Clone() CompanyRecord {
	out := r
	if r.Attributes != nil {
		out.Attributes = make(map[Field]string, len(r.Attributes))
		for k, v := range r.Attributes {
			out.Attributes[k] = v
		}
	}
	out.Sources = slices.Clone(r.Sources)
	return out
}

// CloneRecords deep-copies a record slice.
func CloneRecords(records []CompanyRecord) []CompanyRecord {
	out := make([]CompanyRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
