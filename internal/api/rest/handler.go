package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/copperline/pipeline-core/internal/adapter"
	"github.com/copperline/pipeline-core/internal/api/rest/dto"
	"github.com/copperline/pipeline-core/internal/cadence"
	"github.com/copperline/pipeline-core/internal/domain"
	"github.com/copperline/pipeline-core/internal/intake"
	"github.com/copperline/pipeline-core/internal/lifecycle"
	"github.com/copperline/pipeline-core/internal/queue"
	"github.com/copperline/pipeline-core/internal/store"
)

// Handler defines the interface for REST API handlers
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// ListProspects retrieves prospects with optional filters
	// GET /api/v1/prospects?population=<p1>,<p2>&company_id=<id>&score_min=<n>&score_max=<n>&search=<q>&sort_by=<col>&sort_desc=<bool>&limit=<n>&offset=<n>
	ListProspects(c *gin.Context)

	// GetProspect retrieves a single prospect by ID
	// GET /api/v1/prospects/:id
	GetProspect(c *gin.Context)

	// ListActivities retrieves a prospect's audit trail, newest first
	// GET /api/v1/prospects/:id/activities?limit=<n>
	ListActivities(c *gin.Context)

	// Transition moves a prospect to another population
	// POST /api/v1/prospects/:id/transition
	Transition(c *gin.Context)

	// BulkTransition moves many prospects to the same population
	// POST /api/v1/prospects/transition
	BulkTransition(c *gin.Context)

	// TransitionStage advances a prospect's engagement stage
	// POST /api/v1/prospects/:id/stage
	TransitionStage(c *gin.Context)

	// SetFollowUp schedules an explicit follow-up on a prospect
	// POST /api/v1/prospects/:id/follow-up
	SetFollowUp(c *gin.Context)

	// BulkSetFollowUp schedules the same follow-up on many prospects
	// POST /api/v1/prospects/follow-up
	BulkSetFollowUp(c *gin.Context)

	// RecordAttempt records an outbound contact attempt
	// POST /api/v1/prospects/:id/attempts
	RecordAttempt(c *gin.Context)

	// GetQueue returns the ordered daily work queue
	// GET /api/v1/queue?as_of=<rfc3339>
	GetQueue(c *gin.Context)

	// GetOrphans reports engaged prospects with no scheduled follow-up
	// GET /api/v1/reports/orphans
	GetOrphans(c *gin.Context)

	// AnalyzeImport previews an import batch without writing anything
	// POST /api/v1/imports/analyze
	AnalyzeImport(c *gin.Context)

	// CommitImport analyzes and commits an import batch
	// POST /api/v1/imports/commit
	CommitImport(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	store   store.Store
	machine *lifecycle.Machine
	calc    *cadence.Calculator
	funnel  *intake.Funnel
	queue   *queue.Builder
	clock   adapter.Clock
}

// NewHandler creates a new REST API handler
func NewHandler(st store.Store, machine *lifecycle.Machine, calc *cadence.Calculator,
	funnel *intake.Funnel, qb *queue.Builder, clock adapter.Clock) Handler {
	return &handler{
		store:   st,
		machine: machine,
		calc:    calc,
		funnel:  funnel,
		queue:   qb,
		clock:   clock,
	}
}

// ListProspects retrieves prospects with optional filters
func (h *handler) ListProspects(c *gin.Context) {
	query, err := ParseProspectQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	prospects, err := h.store.QueryProspects(c.Request.Context(), query)
	if err != nil {
		respondInternalError(c, err, "Failed to query prospects")
		return
	}

	resp := dto.ProspectListResponse{
		Prospects: make([]dto.ProspectResponse, 0, len(prospects)),
		Count:     len(prospects),
	}
	for _, p := range prospects {
		resp.Prospects = append(resp.Prospects, dto.NewProspectResponse(p))
	}
	c.JSON(http.StatusOK, resp)
}

// GetProspect retrieves a single prospect by ID
func (h *handler) GetProspect(c *gin.Context) {
	id, ok := prospectID(c)
	if !ok {
		return
	}

	prospect, err := h.store.GetProspect(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "Failed to get prospect")
		return
	}
	if prospect == nil {
		respondNotFound(c, "Prospect not found")
		return
	}

	c.JSON(http.StatusOK, dto.NewProspectResponse(prospect))
}

// ListActivities retrieves a prospect's audit trail, newest first
func (h *handler) ListActivities(c *gin.Context) {
	id, ok := prospectID(c)
	if !ok {
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondValidationError(c, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	activities, err := h.store.ListActivities(c.Request.Context(), id, limit)
	if err != nil {
		respondInternalError(c, err, "Failed to list activities")
		return
	}

	resp := make([]dto.ActivityResponse, 0, len(activities))
	for _, a := range activities {
		resp = append(resp, dto.NewActivityResponse(a))
	}
	c.JSON(http.StatusOK, gin.H{"activities": resp, "count": len(resp)})
}

// Transition moves a prospect to another population
func (h *handler) Transition(c *gin.Context) {
	id, ok := prospectID(c)
	if !ok {
		return
	}

	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	to, opts, err := transitionParams(req)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	if err := h.machine.ApplyTransition(c.Request.Context(), id, to, req.Reason, opts); err != nil {
		respondDomainError(c, err)
		return
	}

	prospect, err := h.store.GetProspect(c.Request.Context(), id)
	if err != nil || prospect == nil {
		respondInternalError(c, err, "Failed to reload prospect")
		return
	}
	c.JSON(http.StatusOK, dto.NewProspectResponse(prospect))
}

// BulkTransition moves many prospects to the same population
func (h *handler) BulkTransition(c *gin.Context) {
	var req dto.BulkTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	to, opts, err := transitionParams(req.TransitionRequest)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	result, err := h.machine.BulkTransition(c.Request.Context(), req.ProspectIDs, to, req.Reason, opts)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBulkResultResponse(result))
}

// TransitionStage advances a prospect's engagement stage
func (h *handler) TransitionStage(c *gin.Context) {
	id, ok := prospectID(c)
	if !ok {
		return
	}

	var req dto.StageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	stage := domain.EngagementStage(req.To)
	if !domain.IsValidStage(stage) {
		respondValidationError(c, "unknown engagement stage: "+req.To)
		return
	}

	if err := h.machine.TransitionStage(c.Request.Context(), id, stage, req.Reason); err != nil {
		respondDomainError(c, err)
		return
	}

	prospect, err := h.store.GetProspect(c.Request.Context(), id)
	if err != nil || prospect == nil {
		respondInternalError(c, err, "Failed to reload prospect")
		return
	}
	c.JSON(http.StatusOK, dto.NewProspectResponse(prospect))
}

// SetFollowUp schedules an explicit follow-up on a prospect
func (h *handler) SetFollowUp(c *gin.Context) {
	id, ok := prospectID(c)
	if !ok {
		return
	}

	var req dto.FollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	if err := h.calc.SetFollowUp(c.Request.Context(), id, req.At, req.Note); err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prospect_id": id, "follow_up_at": req.At})
}

// BulkSetFollowUp schedules the same follow-up on many prospects
func (h *handler) BulkSetFollowUp(c *gin.Context) {
	var req dto.BulkFollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.calc.BulkSetFollowUp(c.Request.Context(), req.ProspectIDs, req.At, req.Note)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBulkResultResponse(result))
}

// RecordAttempt records an outbound contact attempt
func (h *handler) RecordAttempt(c *gin.Context) {
	id, ok := prospectID(c)
	if !ok {
		return
	}

	var req dto.AttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	attemptType := domain.AttemptPersonal
	if req.Type != "" {
		attemptType = domain.AttemptType(req.Type)
		if attemptType != domain.AttemptPersonal && attemptType != domain.AttemptAutomated {
			respondValidationError(c, "attempt type must be personal or automated")
			return
		}
	}

	result, err := h.calc.RecordAttempt(c.Request.Context(), id, cadence.AttemptInput{
		Channel:       domain.Channel(req.Channel),
		Type:          attemptType,
		VoicemailLeft: req.VoicemailLeft,
		Notes:         req.Notes,
		OccurredAt:    req.OccurredAt,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AttemptResponse{
		AttemptNumber:          result.AttemptNumber,
		NextContactAt:          result.NextContactAt,
		NextChannel:            string(result.NextChannel),
		ManualDecisionRequired: result.ManualDecisionRequired,
	})
}

// GetQueue returns the ordered daily work queue
func (h *handler) GetQueue(c *gin.Context) {
	asOf := h.clock.Now()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondValidationError(c, "as_of must be an RFC 3339 timestamp")
			return
		}
		asOf = parsed
	}

	entries, err := h.queue.Build(c.Request.Context(), asOf)
	if err != nil {
		respondInternalError(c, err, "Failed to build queue")
		return
	}

	resp := dto.NewQueueResponse(entries)
	c.JSON(http.StatusOK, gin.H{"queue": resp, "count": len(resp), "as_of": asOf})
}

// GetOrphans reports engaged prospects with no scheduled follow-up
func (h *handler) GetOrphans(c *gin.Context) {
	ids, err := h.calc.FindOrphans(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "Failed to find orphans")
		return
	}

	c.JSON(http.StatusOK, dto.OrphanReportResponse{
		ProspectIDs: ids,
		Count:       len(ids),
	})
}

// AnalyzeImport previews an import batch without writing anything
func (h *handler) AnalyzeImport(c *gin.Context) {
	report, ok := h.analyze(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.NewImportReportResponse(report))
}

// CommitImport analyzes and commits an import batch
func (h *handler) CommitImport(c *gin.Context) {
	report, ok := h.analyze(c)
	if !ok {
		return
	}

	result, err := h.funnel.Commit(c.Request.Context(), report)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ImportCommitResponse{
		BatchID:       result.BatchID,
		ImportedCount: result.ImportedCount,
		MergedCount:   result.MergedCount,
		BrokenCount:   result.BrokenCount,
	})
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   h.clock.Now().UTC(),
	})
}

// analyze binds an import request and runs the intake analysis
func (h *handler) analyze(c *gin.Context) (*intake.Report, bool) {
	var req dto.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return nil, false
	}

	records := make([]intake.ImportRecord, 0, len(req.Records))
	for _, r := range req.Records {
		records = append(records, intake.ImportRecord{
			FirstName:   r.FirstName,
			LastName:    r.LastName,
			Email:       r.Email,
			Phone:       r.Phone,
			CompanyName: r.CompanyName,
			Title:       r.Title,
			State:       r.State,
			Source:      r.Source,
			Notes:       r.Notes,
		})
	}

	report, err := h.funnel.Analyze(c.Request.Context(), records, req.SourceName, req.Filename)
	if err != nil {
		respondDomainError(c, err)
		return nil, false
	}
	return report, true
}

// prospectID parses the :id path parameter, responding on failure
func prospectID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		respondBadRequest(c, "Invalid prospect ID")
		return 0, false
	}
	return id, true
}

// transitionParams converts a transition request into typed machine inputs
func transitionParams(req dto.TransitionRequest) (domain.Population, lifecycle.TransitionOptions, error) {
	to := domain.Population(req.To)
	opts := lifecycle.TransitionOptions{
		FollowUpAt:     req.FollowUpAt,
		ParkedMonth:    req.ParkedMonth,
		LostCompetitor: req.LostCompetitor,
		DealValue:      req.DealValue,
		CloseNotes:     req.CloseNotes,
	}

	if req.Stage != nil {
		stage := domain.EngagementStage(*req.Stage)
		if !domain.IsValidStage(stage) {
			return to, opts, domain.NewValidationError("stage", "unknown engagement stage "+*req.Stage)
		}
		opts.ToStage = &stage
	}
	if req.LostReason != nil {
		reason := domain.LostReason(*req.LostReason)
		opts.LostReason = &reason
	}

	return to, opts, nil
}
