package scoring

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/copperline/pipeline-core/internal/adapter"
	"github.com/copperline/pipeline-core/internal/domain"
	"github.com/copperline/pipeline-core/internal/logger"
	"github.com/copperline/pipeline-core/internal/store"
)

// rescoreBatchLimit bounds how many prospects one population fetch pulls
const rescoreBatchLimit = 10000

// activePopulations are the populations worth re-scoring; terminal and
// paused prospects keep their last score.
var activePopulations = []domain.Population{
	domain.PopulationUnengaged,
	domain.PopulationEngaged,
	domain.PopulationBroken,
}

// Rescorer recomputes score and confidence across the active populations
type Rescorer struct {
	store store.Store
	clock adapter.Clock
}

// NewRescorer creates a rescorer
func NewRescorer(st store.Store, clock adapter.Clock) *Rescorer {
	return &Rescorer{store: st, clock: clock}
}

// RescoreAll recalculates every active prospect's score and data confidence,
// persisting only the ones that changed. Returns the number of prospects
// examined.
func (r *Rescorer) RescoreAll(ctx context.Context) (int, error) {
	now := r.clock.Now()
	count := 0

	for _, pop := range activePopulations {
		prospects, err := r.store.QueryProspects(ctx, store.ProspectQuery{
			Populations: []domain.Population{pop},
			Limit:       rescoreBatchLimit,
		})
		if err != nil {
			return count, fmt.Errorf("failed to list %s prospects for rescore: %w", pop, err)
		}

		for _, prospect := range prospects {
			company, err := r.store.GetCompany(ctx, prospect.CompanyID)
			if err != nil {
				return count, err
			}
			methods, err := r.store.GetContactMethods(ctx, prospect.ID)
			if err != nil {
				return count, err
			}

			newScore := Score(prospect, company, now)
			newConfidence := Confidence(prospect, methods, now)

			if prospect.Score != newScore || prospect.DataConfidence != newConfidence {
				prospect.Score = newScore
				prospect.DataConfidence = newConfidence
				if err := r.store.UpdateProspect(ctx, prospect); err != nil {
					return count, fmt.Errorf("failed to persist rescore for prospect %d: %w", prospect.ID, err)
				}
			}
			count++
		}
	}

	logger.Info("rescore complete", zap.Int("rescored", count))
	return count, nil
}
