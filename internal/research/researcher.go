package research

import (
	"context"

	"github.com/copperline/pipeline-core/internal/store/schema"
)

// Findings holds what an external lookup discovered about a broken prospect
type Findings struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Title string `json:"title,omitempty"`
	State string `json:"state,omitempty"`
	Notes string `json:"notes,omitempty"`
	// Source names the lookup provider that produced these findings
	Source string `json:"source,omitempty"`
}

// Empty reports whether the lookup found nothing usable
func (f *Findings) Empty() bool {
	return f == nil || (f.Email == "" && f.Phone == "" && f.Title == "" && f.State == "")
}

// Researcher performs an external lookup to fill a prospect's missing contact
// data. Implementations wrap whatever enrichment provider is configured; the
// worker treats them as slow and unreliable.
//
//go:generate mockgen -source=researcher.go -destination=../mocks/researcher.go -package=mocks -mock_names=Researcher=MockResearcher
type Researcher interface {
	// Lookup researches one prospect and returns findings, which may be empty
	Lookup(ctx context.Context, prospect *schema.Prospect, company *schema.Company) (*Findings, error)
}
