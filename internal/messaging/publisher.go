package messaging

import (
	"context"
	"time"

	"github.com/copperline/pipeline-core/internal/domain"
)

// TransitionEvent is published after every committed lifecycle transition so
// the automation and presentation layers can react without polling.
type TransitionEvent struct {
	ProspectID  int64                   `json:"prospect_id"`
	From        domain.Population       `json:"from"`
	To          domain.Population       `json:"to"`
	StageBefore *domain.EngagementStage `json:"stage_before,omitempty"`
	StageAfter  *domain.EngagementStage `json:"stage_after,omitempty"`
	Reason      string                  `json:"reason,omitempty"`
	Actor       string                  `json:"actor"`
	OccurredAt  time.Time               `json:"occurred_at"`
}

// ImportEvent is published after every committed import batch
type ImportEvent struct {
	BatchID     string    `json:"batch_id"`
	SourceName  string    `json:"source_name"`
	NewRecords  int       `json:"new_records"`
	Merged      int       `json:"merged"`
	NeedsReview int       `json:"needs_review"`
	BlockedDNC  int       `json:"blocked_dnc"`
	Incomplete  int       `json:"incomplete"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Publisher defines the interface for publishing pipeline events
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishTransition publishes a lifecycle transition event
	PublishTransition(ctx context.Context, event *TransitionEvent) error
	// PublishImport publishes an import batch event
	PublishImport(ctx context.Context, event *ImportEvent) error
	// Close releases the underlying connection
	Close()
}
