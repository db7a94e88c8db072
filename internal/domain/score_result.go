package domain

import (
	"encoding/json"
	"fmt"
)

// ScoreResult is the validated outcome of an AI scoring call. Scorer
// responses are checked at the boundary: a response carrying an error
// field, malformed JSON, or an out-of-range score never makes it past
// ParseScoreResult.
type ScoreResult struct {
	LeadScore         int    `json:"lead_score"`
	ScoreRationale    string `json:"score_rationale"`
	CompanyName       string `json:"company_name"`
	Industry          string `json:"industry"`
	KeyInsights       string `json:"key_insights"`
	FitAnalysis       string `json:"fit_analysis"`
	PersonalizedEmail string `json:"personalized_email"`
	SMSDraft          string `json:"sms_draft"`
	RecommendedAction string `json:"recommended_action"`
}

// scoreResultEnvelope mirrors the raw wire shape, including the error variant
type scoreResultEnvelope struct {
	ScoreResult
	Error string `json:"error"`
}

// ParseScoreResult decodes and validates a raw scorer response payload.
// A payload with an "error" field is reported as a scoring failure, not a
// result.
func ParseScoreResult(raw []byte) (*ScoreResult, error) {
	var envelope scoreResultEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, NewDomainErrorWithCause(ErrCodeExternalCall, "scorer returned malformed JSON", err)
	}

	if envelope.Error != "" {
		return nil, NewDomainError(ErrCodeExternalCall, fmt.Sprintf("scorer returned error: %s", envelope.Error))
	}

	result := envelope.ScoreResult
	if err := ValidateScoreResult(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

// ValidateScoreResult validates a ScoreResult instance
func ValidateScoreResult(r *ScoreResult) error {
	if r == nil {
		return fmt.Errorf("score result cannot be nil")
	}

	if r.LeadScore < 0 || r.LeadScore > 100 {
		return ErrInvalidScore
	}

	return nil
}
