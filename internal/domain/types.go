package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Population represents the top-level pipeline bucket a prospect occupies
type Population string

const (
	// PopulationBroken means the prospect is missing a usable email or phone and needs research
	PopulationBroken Population = "broken"
	// PopulationUnengaged means data is complete and outreach is system-paced
	PopulationUnengaged Population = "unengaged"
	// PopulationEngaged means the prospect showed interest; cadence is prospect-paced
	PopulationEngaged Population = "engaged"
	// PopulationParked means outreach is paused until a specific month
	PopulationParked Population = "parked"
	// PopulationDeadDNC means Do Not Contact; terminal outside the 24h reversal window
	PopulationDeadDNC Population = "dead_dnc"
	// PopulationLost means the deal was lost; resurrectable manually
	PopulationLost Population = "lost"
	// PopulationPartnership means a non-prospect relationship contact
	PopulationPartnership Population = "partnership"
	// PopulationClosedWon means the deal closed; terminal
	PopulationClosedWon Population = "closed_won"
)

// Populations lists every population value
func Populations() []Population {
	return []Population{
		PopulationBroken,
		PopulationUnengaged,
		PopulationEngaged,
		PopulationParked,
		PopulationDeadDNC,
		PopulationLost,
		PopulationPartnership,
		PopulationClosedWon,
	}
}

// IsValidPopulation checks if a population value is known
func IsValidPopulation(p Population) bool {
	switch p {
	case PopulationBroken, PopulationUnengaged, PopulationEngaged, PopulationParked,
		PopulationDeadDNC, PopulationLost, PopulationPartnership, PopulationClosedWon:
		return true
	}
	return false
}

// IsTerminal reports whether a population rejects every outbound transition.
// DNC is treated as terminal here; the 24h reversal window is handled by the
// state machine, not the type.
func (p Population) IsTerminal() bool {
	return p == PopulationDeadDNC || p == PopulationClosedWon
}

// EngagementStage represents the sub-state within the engaged population
type EngagementStage string

const (
	StagePreDemo       EngagementStage = "pre_demo"
	StageDemoScheduled EngagementStage = "demo_scheduled"
	StagePostDemo      EngagementStage = "post_demo"
	StageClosing       EngagementStage = "closing"
)

// IsValidStage checks if a stage value is known
func IsValidStage(s EngagementStage) bool {
	switch s {
	case StagePreDemo, StageDemoScheduled, StagePostDemo, StageClosing:
		return true
	}
	return false
}

// Priority returns the work-queue priority of a stage (higher = more urgent)
func (s EngagementStage) Priority() int {
	switch s {
	case StageClosing:
		return 4
	case StagePostDemo:
		return 3
	case StageDemoScheduled:
		return 2
	case StagePreDemo:
		return 1
	}
	return 0
}

// ActivityType represents the type of audit activity logged against a prospect
type ActivityType string

const (
	ActivityCall         ActivityType = "call"
	ActivityVoicemail    ActivityType = "voicemail"
	ActivityEmailSent    ActivityType = "email_sent"
	ActivityEmailReplied ActivityType = "email_replied"
	ActivityNote         ActivityType = "note"
	ActivityStatusChange ActivityType = "status_change"
	ActivityReminder     ActivityType = "reminder"
	ActivityImport       ActivityType = "import"
	ActivityEnrichment   ActivityType = "enrichment"
	ActivityResearch     ActivityType = "research"
)

// AttemptType tags who made an outbound attempt
type AttemptType string

const (
	// AttemptPersonal is direct human outreach
	AttemptPersonal AttemptType = "personal"
	// AttemptAutomated is a system-sent touch
	AttemptAutomated AttemptType = "automated"
)

// Channel is the contact channel suggested or used for an attempt
type Channel string

const (
	ChannelCall  Channel = "call"
	ChannelEmail Channel = "email"
	ChannelCombo Channel = "combo"
)

// ContactMethodType distinguishes email from phone contact methods
type ContactMethodType string

const (
	ContactEmail ContactMethodType = "email"
	ContactPhone ContactMethodType = "phone"
)

// LostReason categorizes why a prospect was lost
type LostReason string

const (
	LostToCompetitor  LostReason = "lost_to_competitor"
	LostNotBuying     LostReason = "not_buying"
	LostTiming        LostReason = "timing"
	LostBudget        LostReason = "budget"
	LostOutOfBusiness LostReason = "out_of_business"
)

// DeadReason categorizes why a prospect entered dead_dnc
type DeadReason string

const (
	DeadDNCRequest DeadReason = "dnc_request"
)

// Timezone is the coarse US timezone bucket used for call ordering
type Timezone string

const (
	TimezoneEastern  Timezone = "eastern"
	TimezoneCentral  Timezone = "central"
	TimezoneMountain Timezone = "mountain"
	TimezonePacific  Timezone = "pacific"
	TimezoneAlaska   Timezone = "alaska"
	TimezoneHawaii   Timezone = "hawaii"
)

// CallOrder returns the morning call order for a timezone (lower = call first).
// East coast mornings open first, so eastern sorts ahead.
func (t Timezone) CallOrder() int {
	switch t {
	case TimezoneEastern:
		return 1
	case TimezoneCentral:
		return 2
	case TimezoneMountain:
		return 3
	case TimezonePacific:
		return 4
	case TimezoneAlaska:
		return 5
	case TimezoneHawaii:
		return 6
	}
	return 2
}

var stateToTimezone = map[string]Timezone{
	"AL": TimezoneCentral, "AK": TimezoneAlaska, "AZ": TimezoneMountain,
	"AR": TimezoneCentral, "CA": TimezonePacific, "CO": TimezoneMountain,
	"CT": TimezoneEastern, "DE": TimezoneEastern, "FL": TimezoneEastern,
	"GA": TimezoneEastern, "HI": TimezoneHawaii, "ID": TimezoneMountain,
	"IL": TimezoneCentral, "IN": TimezoneEastern, "IA": TimezoneCentral,
	"KS": TimezoneCentral, "KY": TimezoneEastern, "LA": TimezoneCentral,
	"ME": TimezoneEastern, "MD": TimezoneEastern, "MA": TimezoneEastern,
	"MI": TimezoneEastern, "MN": TimezoneCentral, "MS": TimezoneCentral,
	"MO": TimezoneCentral, "MT": TimezoneMountain, "NE": TimezoneCentral,
	"NV": TimezonePacific, "NH": TimezoneEastern, "NJ": TimezoneEastern,
	"NM": TimezoneMountain, "NY": TimezoneEastern, "NC": TimezoneEastern,
	"ND": TimezoneCentral, "OH": TimezoneEastern, "OK": TimezoneCentral,
	"OR": TimezonePacific, "PA": TimezoneEastern, "RI": TimezoneEastern,
	"SC": TimezoneEastern, "SD": TimezoneCentral, "TN": TimezoneCentral,
	"TX": TimezoneCentral, "UT": TimezoneMountain, "VT": TimezoneEastern,
	"VA": TimezoneEastern, "WA": TimezonePacific, "WV": TimezoneEastern,
	"WI": TimezoneCentral, "WY": TimezoneMountain, "DC": TimezoneEastern,
}

// Area codes that disagree with or refine the state table enough to matter.
// Used only when no state is known.
var areaCodeToTimezone = map[string]Timezone{
	"212": TimezoneEastern, "646": TimezoneEastern, "718": TimezoneEastern,
	"917": TimezoneEastern, "202": TimezoneEastern, "305": TimezoneEastern,
	"404": TimezoneEastern, "617": TimezoneEastern, "215": TimezoneEastern,
	"312": TimezoneCentral, "713": TimezoneCentral, "214": TimezoneCentral,
	"512": TimezoneCentral, "615": TimezoneCentral, "504": TimezoneCentral,
	"303": TimezoneMountain, "602": TimezoneMountain, "801": TimezoneMountain,
	"505": TimezoneMountain, "406": TimezoneMountain,
	"213": TimezonePacific, "310": TimezonePacific, "415": TimezonePacific,
	"206": TimezonePacific, "503": TimezonePacific, "702": TimezonePacific,
	"907": TimezoneAlaska, "808": TimezoneHawaii,
}

// TimezoneForState returns the timezone bucket for a two-letter state code
func TimezoneForState(state string) (Timezone, bool) {
	tz, ok := stateToTimezone[strings.ToUpper(strings.TrimSpace(state))]
	return tz, ok
}

// DeriveTimezone assigns a timezone using the cascade: state lookup, then
// phone area code, then central as the default.
func DeriveTimezone(state string, phone string) Timezone {
	if tz, ok := TimezoneForState(state); ok {
		return tz
	}
	if digits := NormalizePhone(phone); len(digits) == 10 {
		if tz, ok := areaCodeToTimezone[digits[:3]]; ok {
			return tz
		}
	}
	return TimezoneCentral
}

// Legal-entity suffixes stripped during company-name normalization. Business
// identity tokens (Holdings, Capital, Group, Partners, ...) are preserved so
// affiliated but differently-branded entities stay distinct.
var legalSuffixes = []*regexp.Regexp{
	regexp.MustCompile(`,?\s*l\.?l\.?c\.?$`),
	regexp.MustCompile(`,?\s*incorporated$`),
	regexp.MustCompile(`,?\s*inc\.?$`),
	regexp.MustCompile(`,?\s*corporation$`),
	regexp.MustCompile(`,?\s*corp\.?$`),
	regexp.MustCompile(`,?\s*limited$`),
	regexp.MustCompile(`,?\s*ltd\.?$`),
	regexp.MustCompile(`,?\s*l\.?p\.?$`),
	regexp.MustCompile(`,?\s*company$`),
	regexp.MustCompile(`,?\s*co\.?$`),
}

// NormalizeCompanyName lowercases a company name and strips legal-entity
// suffixes only. This is the dedup key for companies.
func NormalizeCompanyName(name string) string {
	result := strings.ToLower(strings.TrimSpace(name))
	for _, re := range legalSuffixes {
		result = re.ReplaceAllString(result, "")
	}
	return strings.TrimSpace(result)
}

// NormalizePhone strips a phone number to 10-digit US form, dropping a
// leading country-code 1. Non-US numbers come back as raw digits.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, c := range phone {
		if c >= '0' && c <= '9' {
			b.WriteByte(byte(c))
		}
	}
	digits := b.String()
	if len(digits) == 11 && digits[0] == '1' {
		return digits[1:]
	}
	return digits
}

// NormalizeEmail lowercases and trims an email address for matching
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParkedMonth formats a year-month bucket as YYYY-MM
func ParkedMonth(year int, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
