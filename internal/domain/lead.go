package domain

import (
	"fmt"
	"strings"
	"time"
)

// RecommendedAction represents the suggested next step for a lead
type RecommendedAction string

const (
	ActionQualified       RecommendedAction = "Qualified"
	ActionDisqualified    RecommendedAction = "Disqualified"
	ActionFurtherResearch RecommendedAction = "Further Research"
)

// Lead scoring thresholds
const (
	HotScore       = 80
	QualifiedScore = 70
	WarmScore      = 60
)

// Maximum number of scraped characters kept on a lead for provenance
const MaxScrapedSnapshot = 500

// Lead represents one scored, outreach-ready prospect
type Lead struct {
	ID                int               `json:"id"`
	URL               string            `json:"url"`
	CompanyName       string            `json:"company_name"`
	Industry          string            `json:"industry"`
	Score             int               `json:"lead_score"`
	ScoreRationale    string            `json:"score_rationale"`
	KeyInsights       string            `json:"key_insights"`
	FitAnalysis       string            `json:"fit_analysis"`
	PersonalizedEmail string            `json:"personalized_email"`
	SMSDraft          string            `json:"sms_draft"`
	RecommendedAction RecommendedAction `json:"recommended_action"`
	ScrapedContent    string            `json:"scraped_content"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

// NewLeadFromScore builds a Lead from a validated scorer result. Missing
// scorer fields fall back to defaults, and an unrecognized recommended
// action is coerced to Further Research rather than rejected.
func NewLeadFromScore(url string, result *ScoreResult, scrapedContent string, metadata map[string]string) *Lead {
	companyName := result.CompanyName
	if companyName == "" {
		companyName = "Unknown"
	}
	industry := result.Industry
	if industry == "" {
		industry = "Unknown"
	}

	// Truncate on rune boundaries so the snapshot stays valid UTF-8.
	snapshot := scrapedContent
	if runes := []rune(snapshot); len(runes) > MaxScrapedSnapshot {
		snapshot = string(runes[:MaxScrapedSnapshot])
	}

	return &Lead{
		URL:               url,
		CompanyName:       companyName,
		Industry:          industry,
		Score:             result.LeadScore,
		ScoreRationale:    result.ScoreRationale,
		KeyInsights:       result.KeyInsights,
		FitAnalysis:       result.FitAnalysis,
		PersonalizedEmail: result.PersonalizedEmail,
		SMSDraft:          result.SMSDraft,
		RecommendedAction: CoerceAction(result.RecommendedAction),
		ScrapedContent:    snapshot,
		Metadata:          metadata,
	}
}

// CoerceAction normalizes a raw recommended action string. Unknown values
// become Further Research so lead construction never fails on this field.
func CoerceAction(raw string) RecommendedAction {
	switch RecommendedAction(strings.TrimSpace(raw)) {
	case ActionQualified:
		return ActionQualified
	case ActionDisqualified:
		return ActionDisqualified
	case ActionFurtherResearch:
		return ActionFurtherResearch
	}
	return ActionFurtherResearch
}

// ValidateLead validates a Lead instance
func ValidateLead(l *Lead) error {
	if l == nil {
		return fmt.Errorf("lead cannot be nil")
	}

	if l.URL == "" {
		return fmt.Errorf("lead URL is required")
	}

	if l.Score < 0 || l.Score > 100 {
		return ErrInvalidScore
	}

	if !isValidAction(l.RecommendedAction) {
		return fmt.Errorf("lead RecommendedAction is invalid: %s", l.RecommendedAction)
	}

	return nil
}

// IsQualified reports whether the lead meets the qualification threshold
func (l *Lead) IsQualified(threshold int) bool {
	if threshold <= 0 {
		threshold = QualifiedScore
	}
	return l.Score >= threshold
}

// QualificationLabel returns a human-readable qualification band
func (l *Lead) QualificationLabel() string {
	switch {
	case l.Score >= HotScore:
		return "Hot Lead"
	case l.Score >= QualifiedScore:
		return "Qualified"
	case l.Score >= WarmScore:
		return "Warm Lead"
	default:
		return "Cold Lead"
	}
}

// isValidAction checks if a RecommendedAction is valid
func isValidAction(a RecommendedAction) bool {
	switch a {
	case ActionQualified, ActionDisqualified, ActionFurtherResearch:
		return true
	}
	return false
}
