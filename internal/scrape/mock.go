package scrape

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"strings"
)

type mockCompany struct {
	name     string
	product  string
	industry string
}

var mockCompanies = []mockCompany{
	{"TechFlow Solutions", "Cloud-based workflow automation", "B2B SaaS, Enterprise Software"},
	{"DataSync Pro", "Real-time data integration platform", "Data Analytics, API Integration"},
	{"CustomerFirst AI", "AI-powered customer success management", "AI/ML, Customer Service"},
	{"SecureVault Systems", "Enterprise security and compliance", "Cybersecurity, Compliance"},
	{"GrowthMetrics", "Marketing analytics and attribution", "Marketing Technology, Analytics"},
}

// URLHash derives a stable value from a URL, used to pick mock fixtures.
// The same URL always maps to the same company.
func URLHash(url string) uint32 {
	sum := md5.Sum([]byte(url))
	return binary.BigEndian.Uint32(sum[:4])
}

// MockFetcher produces realistic page content without any network calls.
// Output is deterministic per URL so repeated runs are comparable.
type MockFetcher struct{}

// NewMockFetcher creates a mock fetcher.
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{}
}

// Scrape generates mock company content for the URL.
func (m *MockFetcher) Scrape(_ context.Context, url string) (*Page, error) {
	h := URLHash(url)
	c := mockCompanies[h%uint32(len(mockCompanies))]
	employees := 20 + h%180
	founded := 2015 + h%10
	customers := 100 + h%400

	markdown := fmt.Sprintf(`# %s

## About Us
Welcome to %s! We are a leading provider of %s.
Founded in %d, we've been serving businesses across Europe and North America.

## Our Solution
Our platform offers:
- %s
- Seamless integration with major business tools
- Enterprise-grade security and compliance
- 24/7 customer support
- Scalable infrastructure for growing businesses

## Industries We Serve
%s

## Company Information
- **Team Size**: %d+ employees
- **Founded**: %d
- **Headquarters**: Copenhagen, Denmark
- **Locations**: Denmark, UK, Germany, USA

## Our Clients
We work with Fortune 500 companies, mid-sized enterprises, and fast-growing startups.
Our clients value our commitment to innovation, security, and customer success.

## Technology Stack
Built with modern technologies:
- Cloud-native architecture (AWS/Azure)
- AI and machine learning capabilities
- RESTful APIs and webhooks
- SOC 2 Type II certified
- GDPR compliant

## Contact Information
Email: contact@%s.com
Website: %s

## Recent News
We recently closed a Series B funding round and expanded our operations to the US market.
Our platform now serves over %d enterprise customers worldwide.
`,
		c.name, c.name, strings.ToLower(c.product), founded,
		c.product, c.industry, employees, founded,
		strings.ToLower(strings.ReplaceAll(c.name, " ", "")), url, customers)

	metadata := map[string]string{
		"title":       fmt.Sprintf("%s - Enterprise Software Solutions", c.name),
		"description": fmt.Sprintf("Leading provider of B2B software solutions for modern enterprises. %s helps businesses automate and scale their operations.", c.name),
		"language":    "en",
		"url":         url,
		"ogTitle":     c.name,
	}

	return &Page{Markdown: markdown, Metadata: metadata}, nil
}
