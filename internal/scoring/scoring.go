// Package scoring computes the 0-100 prospect priority score and the 0-100
// data-confidence score. The score is a weighted composite of company fit,
// contact quality, engagement, timing, and source quality; the weights are
// hand-tuned and stay fixed until enough outcome data exists to tune them.
package scoring

import (
	"strings"
	"time"

	"github.com/copperline/pipeline-core/internal/domain"
	"github.com/copperline/pipeline-core/internal/store/schema"
)

// Weights are the scoring category percentages; they sum to 100.
type Weights struct {
	CompanyFit        int
	ContactQuality    int
	EngagementSignals int
	TimingSignals     int
	SourceQuality     int
}

// DefaultWeights is the hand-tuned production weighting
var DefaultWeights = Weights{
	CompanyFit:        25,
	ContactQuality:    20,
	EngagementSignals: 25,
	TimingSignals:     15,
	SourceQuality:     15,
}

// titleSeniority maps title substrings to seniority (higher = more senior).
// Matching is substring-based against the lowercased title; the best match
// wins, so "senior vice president" beats the embedded "president".
var titleSeniority = map[string]int{
	"ceo":                     100,
	"chief executive officer": 100,
	"president":               95,
	"owner":                   95,
	"founder":                 90,
	"co-founder":              88,
	"coo":                     85,
	"chief operating officer": 85,
	"cto":                     85,
	"chief technology officer": 85,
	"cfo":                      80,
	"chief financial officer":  80,
	"evp":                      78,
	"executive vice president": 78,
	"svp":                      75,
	"senior vice president":    75,
	"vp":                       70,
	"vice president":           70,
	"director":                 60,
	"senior manager":           50,
	"manager":                  40,
	"supervisor":               30,
	"associate":                20,
	"analyst":                  15,
	"coordinator":              10,
}

// sourceQuality ranks lead sources
var sourceQuality = map[string]int{
	"referral":       100,
	"inbound":        85,
	"warm intro":     80,
	"conference":     70,
	"webinar":        65,
	"phoneburner":    50,
	"linkedin":       45,
	"purchased list": 30,
	"list":           40,
	"cold":           20,
}

// sourceQualityOrder fixes the match precedence: more specific keys first so
// "purchased list" is not shadowed by "list"
var sourceQualityOrder = []string{
	"referral", "inbound", "warm intro", "conference", "webinar",
	"phoneburner", "linkedin", "purchased list", "list", "cold",
}

// sizeScores ranks company size buckets
var sizeScores = map[string]int{
	"enterprise": 90,
	"large":      80,
	"medium":     70,
	"small":      50,
}

// Score calculates the prospect priority score 0-100 with the default weights
func Score(prospect *schema.Prospect, company *schema.Company, now time.Time) int {
	return ScoreWithWeights(prospect, company, now, DefaultWeights)
}

// ScoreWithWeights calculates the prospect priority score with explicit weights
func ScoreWithWeights(prospect *schema.Prospect, company *schema.Company, now time.Time, w Weights) int {
	raw := scoreCompanyFit(company)*w.CompanyFit +
		scoreContactQuality(prospect, company)*w.ContactQuality +
		scoreEngagement(prospect)*w.EngagementSignals +
		scoreTiming(prospect, now)*w.TimingSignals +
		scoreSource(prospect)*w.SourceQuality

	return clamp((raw + 50) / 100)
}

// Confidence calculates the data-confidence score 0-100 from field
// completeness, contact method coverage, verification freshness, source
// reliability, and recorded intel.
func Confidence(prospect *schema.Prospect, methods []*schema.ContactMethod, now time.Time) int {
	score := 0
	maxScore := 0

	// Name completeness
	maxScore += 10
	switch {
	case prospect.FirstName != "" && prospect.LastName != "":
		score += 10
	case prospect.FirstName != "" || prospect.LastName != "":
		score += 5
	}

	// Title
	maxScore += 10
	if prospect.Title != nil && *prospect.Title != "" {
		score += 10
	}

	// Company linkage
	maxScore += 5
	if prospect.CompanyID != 0 {
		score += 5
	}

	// Contact method coverage
	hasEmail, hasPhone := false, false
	verifiedCount := 0
	for _, m := range methods {
		switch m.Type {
		case domain.ContactEmail:
			hasEmail = true
		case domain.ContactPhone:
			hasPhone = true
		}
		if m.IsVerified {
			verifiedCount++
		}
	}
	maxScore += 30
	if hasEmail {
		score += 10
	}
	if hasPhone {
		score += 10
	}
	if hasEmail && hasPhone {
		score += 5
	}
	if verifiedCount > 0 {
		score += 5
	}

	// Verification freshness: verified within 90 days counts as fresh
	maxScore += 15
	freshVerified := false
	for _, m := range methods {
		if m.IsVerified && m.VerifiedAt != nil && now.Sub(*m.VerifiedAt) < 90*24*time.Hour {
			freshVerified = true
			break
		}
	}
	if freshVerified {
		score += 15
	} else if verifiedCount > 0 {
		score += 8
	}

	// Source reliability
	maxScore += 15
	if prospect.Source != nil && *prospect.Source != "" {
		if quality, ok := matchSource(*prospect.Source); ok {
			score += 15 * quality / 100
		} else {
			score += 7
		}
	} else {
		score += 3
	}

	// Notes / intel
	maxScore += 15
	if prospect.Notes != nil {
		if len(*prospect.Notes) > 20 {
			score += 15
		} else if *prospect.Notes != "" {
			score += 8
		}
	}

	if maxScore == 0 {
		return 0
	}
	return clamp((score*100 + maxScore/2) / maxScore)
}

func scoreCompanyFit(company *schema.Company) int {
	if company == nil {
		company = &schema.Company{}
	}
	score := 0

	// Knowing the loan products is itself a fit signal
	if len(company.LoanTypes) > 0 && string(company.LoanTypes) != "null" {
		score += 40
	} else {
		score += 15
	}

	if company.Size != nil && *company.Size != "" {
		if s, ok := sizeScores[strings.ToLower(*company.Size)]; ok {
			score += s
		} else {
			score += 50
		}
	} else {
		score += 15
	}

	if company.State != nil && *company.State != "" {
		score += 30
	} else if company.Domain != nil && *company.Domain != "" {
		score += 15
	}

	return min100(score)
}

func scoreContactQuality(prospect *schema.Prospect, company *schema.Company) int {
	if company == nil {
		company = &schema.Company{}
	}
	score := 0

	if prospect.Title != nil && *prospect.Title != "" {
		title := strings.ToLower(strings.TrimSpace(*prospect.Title))
		bestMatch := 20
		for key, seniority := range titleSeniority {
			if strings.Contains(title, key) && seniority > bestMatch {
				bestMatch = seniority
			}
		}
		score += 60 * bestMatch / 100
	} else {
		score += 10
	}

	if prospect.FirstName != "" {
		score += 10
	}
	if prospect.LastName != "" {
		score += 10
	}
	if prospect.Title != nil && *prospect.Title != "" {
		score += 10
	}
	if company.Domain != nil && *company.Domain != "" {
		score += 5
	}
	if company.State != nil && *company.State != "" {
		score += 5
	}

	return min100(score)
}

func scoreEngagement(prospect *schema.Prospect) int {
	score := 20
	switch prospect.Population {
	case domain.PopulationEngaged:
		score = 70
	case domain.PopulationUnengaged:
		score = 40
	case domain.PopulationBroken:
		score = 10
	case domain.PopulationParked:
		score = 30
	case domain.PopulationLost:
		score = 5
	case domain.PopulationDeadDNC:
		score = 0
	case domain.PopulationPartnership:
		score = 20
	case domain.PopulationClosedWon:
		score = 100
	}

	if prospect.Population == domain.PopulationEngaged && prospect.EngagementStage != nil {
		switch *prospect.EngagementStage {
		case domain.StageDemoScheduled:
			score += 10
		case domain.StagePostDemo:
			score += 20
		case domain.StageClosing:
			score += 30
		}
	}

	return min100(score)
}

func scoreTiming(prospect *schema.Prospect, now time.Time) int {
	score := 30

	if prospect.LastContactAt != nil {
		days := int(now.Sub(*prospect.LastContactAt).Hours() / 24)
		switch {
		case days <= 7:
			score += 50
		case days <= 14:
			score += 40
		case days <= 30:
			score += 30
		case days <= 60:
			score += 15
		case days <= 90:
			score += 5
		}
	}

	// Having a follow-up on the calendar is itself a warm signal
	if prospect.FollowUpAt != nil {
		score += 10
	}

	return min100(score)
}

func scoreSource(prospect *schema.Prospect) int {
	if prospect.Source == nil || *prospect.Source == "" {
		return 30
	}
	if quality, ok := matchSource(*prospect.Source); ok {
		return quality
	}
	return 40
}

func matchSource(source string) (int, bool) {
	lower := strings.ToLower(source)
	for _, key := range sourceQualityOrder {
		if strings.Contains(lower, key) {
			return sourceQuality[key], true
		}
	}
	return 0, false
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func min100(v int) int {
	if v > 100 {
		return 100
	}
	return v
}
