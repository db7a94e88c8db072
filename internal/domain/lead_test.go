package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLead(t *testing.T) {
	valid := func() *Lead {
		return &Lead{
			URL:               "https://example.com",
			CompanyName:       "Acme",
			Industry:          "B2B SaaS",
			Score:             72,
			RecommendedAction: ActionQualified,
		}
	}

	t.Run("accepts valid lead", func(t *testing.T) {
		assert.NoError(t, ValidateLead(valid()))
	})

	t.Run("rejects nil lead", func(t *testing.T) {
		assert.Error(t, ValidateLead(nil))
	})

	t.Run("rejects missing URL", func(t *testing.T) {
		l := valid()
		l.URL = ""
		assert.Error(t, ValidateLead(l))
	})

	t.Run("score bounds", func(t *testing.T) {
		cases := []struct {
			name    string
			score   int
			wantErr bool
		}{
			{"zero", 0, false},
			{"hundred", 100, false},
			{"negative", -1, true},
			{"over", 101, true},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				l := valid()
				l.Score = tc.score
				err := ValidateLead(l)
				if tc.wantErr {
					assert.ErrorIs(t, err, ErrInvalidScore)
				} else {
					assert.NoError(t, err)
				}
			})
		}
	})
}

func TestCoerceAction(t *testing.T) {
	assert.Equal(t, ActionQualified, CoerceAction("Qualified"))
	assert.Equal(t, ActionDisqualified, CoerceAction("Disqualified"))
	assert.Equal(t, ActionFurtherResearch, CoerceAction("Further Research"))
	assert.Equal(t, ActionFurtherResearch, CoerceAction("maybe later"))
	assert.Equal(t, ActionFurtherResearch, CoerceAction(""))
	assert.Equal(t, ActionQualified, CoerceAction("  Qualified "))
}

func TestNewLeadFromScore(t *testing.T) {
	t.Run("fills defaults for missing fields", func(t *testing.T) {
		lead := NewLeadFromScore("https://example.com", &ScoreResult{LeadScore: 0}, "", nil)
		assert.Equal(t, "Unknown", lead.CompanyName)
		assert.Equal(t, "Unknown", lead.Industry)
		assert.Equal(t, 0, lead.Score)
		assert.Equal(t, ActionFurtherResearch, lead.RecommendedAction)
		assert.NoError(t, ValidateLead(lead))
	})

	t.Run("truncates scraped content snapshot", func(t *testing.T) {
		content := strings.Repeat("a", MaxScrapedSnapshot+1000)
		lead := NewLeadFromScore("https://example.com", &ScoreResult{LeadScore: 50}, content, nil)
		assert.Len(t, lead.ScrapedContent, MaxScrapedSnapshot)
	})

	t.Run("snapshot truncation keeps valid utf-8", func(t *testing.T) {
		content := strings.Repeat("é", MaxScrapedSnapshot+10)
		lead := NewLeadFromScore("https://example.com", &ScoreResult{LeadScore: 50}, content, nil)
		assert.True(t, utf8.ValidString(lead.ScrapedContent))
		assert.Equal(t, MaxScrapedSnapshot, utf8.RuneCountInString(lead.ScrapedContent))
	})

	t.Run("carries scorer fields through", func(t *testing.T) {
		result := &ScoreResult{
			LeadScore:         88,
			ScoreRationale:    "strong fit",
			CompanyName:       "TechFlow Solutions",
			Industry:          "Enterprise Software",
			RecommendedAction: "Qualified",
		}
		lead := NewLeadFromScore("https://techflow.example", result, "content", map[string]string{"title": "TechFlow"})
		assert.Equal(t, 88, lead.Score)
		assert.Equal(t, "TechFlow Solutions", lead.CompanyName)
		assert.Equal(t, ActionQualified, lead.RecommendedAction)
		assert.Equal(t, "TechFlow", lead.Metadata["title"])
	})
}

func TestLeadQualification(t *testing.T) {
	cases := []struct {
		score int
		label string
	}{
		{95, "Hot Lead"},
		{80, "Hot Lead"},
		{75, "Qualified"},
		{65, "Warm Lead"},
		{20, "Cold Lead"},
	}
	for _, tc := range cases {
		l := &Lead{Score: tc.score}
		assert.Equal(t, tc.label, l.QualificationLabel(), "score %d", tc.score)
	}

	l := &Lead{Score: 70}
	assert.True(t, l.IsQualified(0))
	assert.False(t, l.IsQualified(71))
}

func TestLeadJSONRoundTrip(t *testing.T) {
	lead := &Lead{
		ID:                7,
		URL:               "https://example.com",
		CompanyName:       "Acme",
		Industry:          "Cybersecurity",
		Score:             81,
		ScoreRationale:    "rationale",
		KeyInsights:       "insights",
		FitAnalysis:       "fit",
		PersonalizedEmail: "email",
		SMSDraft:          "sms",
		RecommendedAction: ActionQualified,
		ScrapedContent:    "content",
		Metadata:          map[string]string{"lang": "en"},
		CreatedAt:         time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(lead)
	require.NoError(t, err)

	var decoded Lead
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *lead, decoded)
}
