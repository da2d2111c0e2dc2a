package dto

import (
	"time"

	"github.com/copperline/pipeline-core/internal/domain"
	"github.com/copperline/pipeline-core/internal/intake"
	"github.com/copperline/pipeline-core/internal/queue"
	"github.com/copperline/pipeline-core/internal/store/schema"
)

// ProspectResponse is the API shape of a prospect
type ProspectResponse struct {
	ID              int64      `json:"id"`
	CompanyID       int64      `json:"company_id"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Title           *string    `json:"title,omitempty"`
	Population      string     `json:"population"`
	EngagementStage *string    `json:"engagement_stage,omitempty"`
	FollowUpAt      *time.Time `json:"follow_up_at,omitempty"`
	LastContactAt   *time.Time `json:"last_contact_at,omitempty"`
	ParkedMonth     *string    `json:"parked_month,omitempty"`
	AttemptCount    int        `json:"attempt_count"`
	Score           int        `json:"score"`
	DataConfidence  int        `json:"data_confidence"`
	Source          *string    `json:"source,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewProspectResponse converts a prospect row to its API shape
func NewProspectResponse(p *schema.Prospect) ProspectResponse {
	resp := ProspectResponse{
		ID:             p.ID,
		CompanyID:      p.CompanyID,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Title:          p.Title,
		Population:     string(p.Population),
		FollowUpAt:     p.FollowUpAt,
		LastContactAt:  p.LastContactAt,
		ParkedMonth:    p.ParkedMonth,
		AttemptCount:   p.AttemptCount,
		Score:          p.Score,
		DataConfidence: p.DataConfidence,
		Source:         p.Source,
		Notes:          p.Notes,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.EngagementStage != nil {
		stage := string(*p.EngagementStage)
		resp.EngagementStage = &stage
	}
	return resp
}

// ProspectListResponse wraps a page of prospects
type ProspectListResponse struct {
	Prospects []ProspectResponse `json:"prospects"`
	Count     int                `json:"count"`
}

// ActivityResponse is the API shape of an audit trail entry
type ActivityResponse struct {
	ID               int64      `json:"id"`
	ProspectID       int64      `json:"prospect_id"`
	Type             string     `json:"type"`
	PopulationBefore *string    `json:"population_before,omitempty"`
	PopulationAfter  *string    `json:"population_after,omitempty"`
	StageBefore      *string    `json:"stage_before,omitempty"`
	StageAfter       *string    `json:"stage_after,omitempty"`
	Channel          *string    `json:"channel,omitempty"`
	AttemptType      *string    `json:"attempt_type,omitempty"`
	FollowUpSet      *time.Time `json:"follow_up_set,omitempty"`
	Notes            *string    `json:"notes,omitempty"`
	CreatedBy        string     `json:"created_by"`
	CreatedAt        time.Time  `json:"created_at"`
}

// NewActivityResponse converts an activity row to its API shape
func NewActivityResponse(a *schema.Activity) ActivityResponse {
	resp := ActivityResponse{
		ID:          a.ID,
		ProspectID:  a.ProspectID,
		Type:        string(a.Type),
		FollowUpSet: a.FollowUpSet,
		Notes:       a.Notes,
		CreatedBy:   a.CreatedBy,
		CreatedAt:   a.CreatedAt,
	}
	resp.PopulationBefore = populationString(a.PopulationBefore)
	resp.PopulationAfter = populationString(a.PopulationAfter)
	if a.StageBefore != nil {
		s := string(*a.StageBefore)
		resp.StageBefore = &s
	}
	if a.StageAfter != nil {
		s := string(*a.StageAfter)
		resp.StageAfter = &s
	}
	if a.Channel != nil {
		s := string(*a.Channel)
		resp.Channel = &s
	}
	if a.AttemptType != nil {
		s := string(*a.AttemptType)
		resp.AttemptType = &s
	}
	return resp
}

func populationString(p *domain.Population) *string {
	if p == nil {
		return nil
	}
	s := string(*p)
	return &s
}

// BulkResultResponse reports the per-item outcome of a bulk operation
type BulkResultResponse struct {
	Applied    []int64          `json:"applied"`
	Skipped    []int64          `json:"skipped"`
	SkipReason map[int64]string `json:"skip_reason,omitempty"`
}

// NewBulkResultResponse converts a bulk result to its API shape
func NewBulkResultResponse(r *domain.BulkResult) BulkResultResponse {
	return BulkResultResponse{
		Applied:    r.Applied,
		Skipped:    r.Skipped,
		SkipReason: r.SkipReason,
	}
}

// AttemptResponse reports what recording an attempt did
type AttemptResponse struct {
	AttemptNumber          int        `json:"attempt_number"`
	NextContactAt          *time.Time `json:"next_contact_at,omitempty"`
	NextChannel            string     `json:"next_channel,omitempty"`
	ManualDecisionRequired bool       `json:"manual_decision_required"`
}

// QueueEntryResponse is one row of the daily call queue
type QueueEntryResponse struct {
	ProspectID int64      `json:"prospect_id"`
	CompanyID  int64      `json:"company_id"`
	Population string     `json:"population"`
	Stage      *string    `json:"stage,omitempty"`
	FollowUpAt *time.Time `json:"follow_up_at,omitempty"`
	Score      int        `json:"score"`
	Timezone   string     `json:"timezone"`
	Overdue    bool       `json:"overdue"`
}

// NewQueueResponse converts queue entries to their API shape
func NewQueueResponse(entries []queue.Entry) []QueueEntryResponse {
	out := make([]QueueEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp := QueueEntryResponse{
			ProspectID: e.ProspectID,
			CompanyID:  e.CompanyID,
			Population: string(e.Population),
			FollowUpAt: e.FollowUpAt,
			Score:      e.Score,
			Timezone:   string(e.Timezone),
			Overdue:    e.Overdue,
		}
		if e.Stage != nil {
			s := string(*e.Stage)
			resp.Stage = &s
		}
		out = append(out, resp)
	}
	return out
}

// OrphanReportResponse lists engaged prospects with no scheduled follow-up
type OrphanReportResponse struct {
	ProspectIDs []int64 `json:"prospect_ids"`
	Count       int     `json:"count"`
}

// ImportAnalysisResponse is the categorization of one import record
type ImportAnalysisResponse struct {
	FullName          string  `json:"full_name"`
	CompanyName       string  `json:"company_name"`
	Status            string  `json:"status"`
	MatchedProspectID int64   `json:"matched_prospect_id,omitempty"`
	MatchReason       string  `json:"match_reason,omitempty"`
	MatchConfidence   float64 `json:"match_confidence,omitempty"`
}

// ImportReportResponse is the full preview of an import batch
type ImportReportResponse struct {
	SourceName  string                   `json:"source_name"`
	Total       int                      `json:"total"`
	New         []ImportAnalysisResponse `json:"new"`
	Merge       []ImportAnalysisResponse `json:"merge"`
	NeedsReview []ImportAnalysisResponse `json:"needs_review"`
	BlockedDNC  []ImportAnalysisResponse `json:"blocked_dnc"`
	Incomplete  []ImportAnalysisResponse `json:"incomplete"`
	CanImport   bool                     `json:"can_import"`
}

// NewImportReportResponse converts an intake report to its API shape
func NewImportReportResponse(r *intake.Report) ImportReportResponse {
	return ImportReportResponse{
		SourceName:  r.SourceName,
		Total:       r.TotalRecords(),
		New:         analysisResponses(r.New),
		Merge:       analysisResponses(r.Merge),
		NeedsReview: analysisResponses(r.NeedsReview),
		BlockedDNC:  analysisResponses(r.BlockedDNC),
		Incomplete:  analysisResponses(r.Incomplete),
		CanImport:   r.CanImport(),
	}
}

func analysisResponses(analyses []intake.Analysis) []ImportAnalysisResponse {
	out := make([]ImportAnalysisResponse, 0, len(analyses))
	for _, a := range analyses {
		out = append(out, ImportAnalysisResponse{
			FullName:          a.Record.FullName(),
			CompanyName:       a.Record.CompanyName,
			Status:            string(a.Status),
			MatchedProspectID: a.MatchedProspectID,
			MatchReason:       string(a.MatchReason),
			MatchConfidence:   a.MatchConfidence,
		})
	}
	return out
}

// ImportCommitResponse reports what a committed import wrote
type ImportCommitResponse struct {
	BatchID       string `json:"batch_id"`
	ImportedCount int    `json:"imported_count"`
	MergedCount   int    `json:"merged_count"`
	BrokenCount   int    `json:"broken_count"`
}
