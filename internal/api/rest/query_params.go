package rest

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/copperline/pipeline-core/internal/domain"
	"github.com/copperline/pipeline-core/internal/store"
)

const MAX_PAGE_SIZE = 200

// prospectQueryParams holds query parameters for GET /prospects
type prospectQueryParams struct {
	Population string `form:"population"`
	CompanyID  *int64 `form:"company_id"`
	ScoreMin   *int   `form:"score_min"`
	ScoreMax   *int   `form:"score_max"`
	Search     string `form:"search"`
	SortBy     string `form:"sort_by,default=score"`
	SortDesc   bool   `form:"sort_desc,default=true"`
	Limit      int    `form:"limit,default=50"`
	Offset     int    `form:"offset,default=0"`
}

var sortColumns = map[string]bool{
	"score":        true,
	"follow_up_at": true,
	"created_at":   true,
	"last_name":    true,
}

// ParseProspectQuery parses and validates prospect listing parameters
func ParseProspectQuery(c *gin.Context) (store.ProspectQuery, error) {
	var params prospectQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return store.ProspectQuery{}, fmt.Errorf("invalid query parameters: %w", err)
	}

	if params.Limit < 1 || params.Limit > MAX_PAGE_SIZE {
		return store.ProspectQuery{}, fmt.Errorf("limit must be between 1 and %d", MAX_PAGE_SIZE)
	}
	if params.Offset < 0 {
		return store.ProspectQuery{}, fmt.Errorf("offset must not be negative")
	}
	if !sortColumns[params.SortBy] {
		return store.ProspectQuery{}, fmt.Errorf("unsupported sort column: %s", params.SortBy)
	}
	if params.ScoreMin != nil && (*params.ScoreMin < 0 || *params.ScoreMin > 100) {
		return store.ProspectQuery{}, fmt.Errorf("score_min must be between 0 and 100")
	}
	if params.ScoreMax != nil && (*params.ScoreMax < 0 || *params.ScoreMax > 100) {
		return store.ProspectQuery{}, fmt.Errorf("score_max must be between 0 and 100")
	}

	query := store.ProspectQuery{
		CompanyID: params.CompanyID,
		ScoreMin:  params.ScoreMin,
		ScoreMax:  params.ScoreMax,
		Search:    strings.TrimSpace(params.Search),
		SortBy:    params.SortBy,
		SortDesc:  params.SortDesc,
		Limit:     params.Limit,
		Offset:    params.Offset,
	}

	if params.Population != "" {
		for _, raw := range strings.Split(params.Population, ",") {
			population := domain.Population(strings.TrimSpace(raw))
			if !domain.IsValidPopulation(population) {
				return store.ProspectQuery{}, fmt.Errorf("unknown population: %s", raw)
			}
			query.Populations = append(query.Populations, population)
		}
	}

	return query, nil
}
