// Package queue builds the ordered daily work list. The queue is a pure
// function of store state and the as-of time: engaged prospects due for
// follow-up come first, ordered by stage urgency with overdue items ahead of
// on-time ones, then due unengaged prospects by score. Within each group the
// owning company's timezone orders east to west so calls land in the
// prospect's morning, and prospect ID breaks every remaining tie so the
// sequence is stable.
package queue

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/copperline/pipeline-core/internal/domain"
	"github.com/copperline/pipeline-core/internal/logger"
	"github.com/copperline/pipeline-core/internal/store"
	"github.com/copperline/pipeline-core/internal/store/schema"
)

// Entry is one queue position with the context a caller needs to act on it
type Entry struct {
	ProspectID int64
	CompanyID  int64
	Population domain.Population
	Stage      *domain.EngagementStage
	FollowUpAt *time.Time
	Score      int
	Timezone   domain.Timezone
	Overdue    bool
}

// Builder assembles the daily queue from store state
type Builder struct {
	store store.Store
}

// NewBuilder creates a queue builder
func NewBuilder(st store.Store) *Builder {
	return &Builder{store: st}
}

// Build returns the ordered work queue as of the given time. Due means
// follow_up_at at or before asOf, so yesterday's missed items roll forward
// instead of expiring.
func (b *Builder) Build(ctx context.Context, asOf time.Time) ([]Entry, error) {
	engaged, err := b.store.ListDueProspects(ctx, domain.PopulationEngaged, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to list due engaged prospects: %w", err)
	}
	unengaged, err := b.store.ListDueProspects(ctx, domain.PopulationUnengaged, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to list due unengaged prospects: %w", err)
	}

	timezones, err := b.companyTimezones(ctx, append(engaged, unengaged...))
	if err != nil {
		return nil, err
	}

	dayStart := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, asOf.Location())

	engagedEntries := toEntries(engaged, timezones, dayStart)
	sort.SliceStable(engagedEntries, func(i, j int) bool {
		a, b := engagedEntries[i], engagedEntries[j]
		if pa, pb := stagePriority(a.Stage), stagePriority(b.Stage); pa != pb {
			return pa > pb
		}
		if a.Overdue != b.Overdue {
			return a.Overdue
		}
		if a.Timezone != b.Timezone {
			return a.Timezone.CallOrder() < b.Timezone.CallOrder()
		}
		return a.ProspectID < b.ProspectID
	})

	unengagedEntries := toEntries(unengaged, timezones, dayStart)
	sort.SliceStable(unengagedEntries, func(i, j int) bool {
		a, b := unengagedEntries[i], unengagedEntries[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Timezone != b.Timezone {
			return a.Timezone.CallOrder() < b.Timezone.CallOrder()
		}
		return a.ProspectID < b.ProspectID
	})

	entries := append(engagedEntries, unengagedEntries...)
	logger.Info("queue built",
		zap.Time("as_of", asOf),
		zap.Int("engaged", len(engagedEntries)),
		zap.Int("unengaged", len(unengagedEntries)),
	)
	return entries, nil
}

func (b *Builder) companyTimezones(ctx context.Context, prospects []*schema.Prospect) (map[int64]domain.Timezone, error) {
	idSet := make(map[int64]struct{})
	for _, p := range prospects {
		idSet[p.CompanyID] = struct{}{}
	}
	ids := make([]int64, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	companies, err := b.store.GetCompaniesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load companies for queue: %w", err)
	}

	timezones := make(map[int64]domain.Timezone, len(companies))
	for id, company := range companies {
		timezones[id] = company.Timezone
	}
	return timezones, nil
}

func toEntries(prospects []*schema.Prospect, timezones map[int64]domain.Timezone, dayStart time.Time) []Entry {
	entries := make([]Entry, 0, len(prospects))
	for _, p := range prospects {
		tz, ok := timezones[p.CompanyID]
		if !ok {
			tz = domain.TimezoneCentral
		}
		entries = append(entries, Entry{
			ProspectID: p.ID,
			CompanyID:  p.CompanyID,
			Population: p.Population,
			Stage:      p.EngagementStage,
			FollowUpAt: p.FollowUpAt,
			Score:      p.Score,
			Timezone:   tz,
			// Overdue means the follow-up was due before today started
			Overdue: p.FollowUpAt != nil && p.FollowUpAt.Before(dayStart),
		})
	}
	return entries
}

func stagePriority(stage *domain.EngagementStage) int {
	if stage == nil {
		return 0
	}
	return stage.Priority()
}
