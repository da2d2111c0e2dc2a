// Package enrichment implements the research.Researcher interface over an
// external contact-enrichment HTTP API.
package enrichment

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/copperline/pipeline-core/internal/adapter"
	"github.com/copperline/pipeline-core/internal/research"
	"github.com/copperline/pipeline-core/internal/store/schema"
)

// Config holds enrichment provider configuration
type Config struct {
	// BaseURL is the API origin, e.g. https://enrich.example.com
	BaseURL string
	// APIKey is sent in the X-Api-Key header
	APIKey string
	// ProviderName labels findings for the audit trail
	ProviderName string
	// Timeout bounds a single lookup request
	Timeout time.Duration
}

// lookupResponse is the provider's wire format for a person lookup
type lookupResponse struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
	Title string `json:"title"`
	State string `json:"state"`
	Notes string `json:"notes"`
}

type researcher struct {
	config Config
	client adapter.HTTPClient
}

// NewResearcher creates an enrichment-backed researcher. The client is
// injected so lookups can be mocked; pass adapter.NewHTTPClient in production.
func NewResearcher(cfg Config, client adapter.HTTPClient) research.Researcher {
	if cfg.ProviderName == "" {
		cfg.ProviderName = "enrichment-api"
	}
	return &researcher{config: cfg, client: client}
}

// Lookup queries the enrichment API by name and company. A clean 200 with no
// usable fields is a successful empty result, not an error.
func (r *researcher) Lookup(ctx context.Context, prospect *schema.Prospect, company *schema.Company) (*research.Findings, error) {
	params := url.Values{}
	params.Set("first_name", prospect.FirstName)
	params.Set("last_name", prospect.LastName)
	if company != nil {
		params.Set("company", company.Name)
		if company.State != nil {
			params.Set("state", *company.State)
		}
	}

	endpoint := fmt.Sprintf("%s/v1/person?%s", r.config.BaseURL, params.Encode())
	headers := map[string]string{"X-Api-Key": r.config.APIKey}

	var resp lookupResponse
	if err := r.client.Get(ctx, endpoint, headers, &resp); err != nil {
		return nil, fmt.Errorf("enrichment lookup failed: %w", err)
	}

	return &research.Findings{
		Email:  resp.Email,
		Phone:  resp.Phone,
		Title:  resp.Title,
		State:  resp.State,
		Notes:  resp.Notes,
		Source: r.config.ProviderName,
	}, nil
}
