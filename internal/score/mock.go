package score

import (
	"context"
	"fmt"
	"strings"

	"github.com/leadforge/leadforge/internal/domain"
	"github.com/leadforge/leadforge/internal/scrape"
)

var mockIndustries = []string{
	"B2B SaaS",
	"Enterprise Software",
	"Data Analytics",
	"Cybersecurity",
	"Marketing Technology",
	"Cloud Infrastructure",
	"AI/Machine Learning",
	"Customer Success",
}

var mockFitReasons = []string{
	"Strong alignment with our ICP in terms of company size and technology stack",
	"Excellent fit - they serve similar customer segments and face challenges we solve",
	"Good potential - their growth stage matches our ideal customer profile",
	"Moderate fit - some alignment but may need further qualification",
	"Limited alignment with our ICP, but worth exploring specific use cases",
}

// MockScorer produces a plausible assessment without any API calls.
// The score is derived from the URL so repeated runs agree: the same
// URL always lands in the same qualification band.
type MockScorer struct{}

// NewMockScorer creates a mock scorer.
func NewMockScorer() *MockScorer {
	return &MockScorer{}
}

// Score generates a deterministic assessment for the input.
func (m *MockScorer) Score(_ context.Context, in Input) (*domain.ScoreResult, error) {
	h := scrape.URLHash(in.URL)

	// 45-94, so every band shows up across a handful of URLs.
	score := 45 + int(h%50)
	industry := mockIndustries[h%uint32(len(mockIndustries))]
	companyName := companyFromContent(in.Content)

	qualified := score >= domain.QualifiedScore
	action := string(domain.ActionDisqualified)
	if qualified {
		action = string(domain.ActionQualified)
	} else if score >= domain.WarmScore {
		action = string(domain.ActionFurtherResearch)
	}

	fitStrength := "moderate"
	fitDetail := "Further research needed to validate budget authority and immediate need."
	if qualified {
		fitStrength = "strong"
		fitDetail = "Their technology-forward approach and enterprise focus make them an ideal prospect."
	}

	return &domain.ScoreResult{
		LeadScore: score,
		ScoreRationale: fmt.Sprintf(
			"Based on the website analysis, %s scores %d/100. They operate in %s which aligns with our target market. %s. The company demonstrates strong digital presence and appears to have the budget for enterprise solutions.",
			companyName, score, industry, mockFitReasons[h%uint32(len(mockFitReasons))]),
		CompanyName: companyName,
		Industry:    industry,
		KeyInsights: fmt.Sprintf(
			"• %s focuses on enterprise B2B solutions\n• Strong emphasis on innovation and modern technology stack\n• Active in the %s space with proven customer base\n• Website demonstrates professional brand positioning\n• Clear value proposition aligned with market needs",
			companyName, industry),
		FitAnalysis: fmt.Sprintf(
			"The company shows %s alignment with our ICP. They operate in the %s sector and demonstrate characteristics of companies that benefit from our solution. %s",
			fitStrength, industry, fitDetail),
		PersonalizedEmail: fmt.Sprintf(`Subject: %s + [Your Company]: Streamlining %s Operations

Hi [Name],

I came across %s and was impressed by your work in %s.

Many companies in your space face challenges with [relevant pain point]. We've helped similar organizations achieve [specific outcome].

Would you be open to a brief 15-minute call to explore if there's a fit?

Best regards,
[Your Name]`, companyName, industry, companyName, industry),
		SMSDraft: fmt.Sprintf(
			"Hi! Saw %s's work in %s. We help similar companies [benefit]. Quick chat?",
			companyName, industry),
		RecommendedAction: action,
	}, nil
}

// companyFromContent pulls the company name from the first markdown H1,
// matching how the mock fetcher titles its pages.
func companyFromContent(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return "Test Company"
}
