// Package leadstore persists scored leads as a JSON file on disk.
package leadstore

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/leadforge/leadforge/internal/domain"
)

// Store manages lead persistence. All mutations rewrite the backing file
// through a temp file and atomic rename.
type Store struct {
	mu        sync.RWMutex
	path      string
	threshold int
	leads     []domain.Lead
}

// Option customizes a Store.
type Option func(*Store)

// WithThreshold sets the qualification threshold used by Statistics and as
// the QualifiedLeads fallback. Non-positive values keep the standard one.
func WithThreshold(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.threshold = n
		}
	}
}

// New loads (or initializes) the lead store at the given file path.
// A corrupted file is logged and treated as an empty store; the corrupt
// content survives on disk until the next successful write.
func New(path string, opts ...Option) (*Store, error) {
	s := &Store{path: path}
	for _, opt := range opts {
		opt(s)
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read lead store: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.leads); err != nil {
			log.Printf("leadstore: %v at %s, starting empty: %v", domain.ErrCorruptStore, path, err)
			s.leads = nil
		}
	}
	return s, nil
}

// Add assigns the next id, stamps the creation time and persists the lead.
// Ids are one higher than the current maximum so deletions never cause reuse
// within a loaded store.
func (s *Store) Add(lead *domain.Lead) (int, error) {
	if err := domain.ValidateLead(lead); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	maxID := 0
	for _, l := range s.leads {
		if l.ID > maxID {
			maxID = l.ID
		}
	}
	lead.ID = maxID + 1
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}

	s.leads = append(s.leads, *lead)
	if err := s.persist(); err != nil {
		s.leads = s.leads[:len(s.leads)-1]
		return 0, err
	}
	return lead.ID, nil
}

// Get returns the lead with the given id.
func (s *Store) Get(id int) (*domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.leads {
		if s.leads[i].ID == id {
			lead := s.leads[i]
			return &lead, nil
		}
	}
	return nil, domain.ErrLeadNotFound
}

// Update replaces the stored lead with the same id.
func (s *Store) Update(lead *domain.Lead) error {
	if err := domain.ValidateLead(lead); err != nil {
		return err
	}
	if lead.ID == 0 {
		return domain.NewDomainError(domain.ErrCodeValidation, "cannot update lead without id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.leads {
		if s.leads[i].ID == lead.ID {
			previous := s.leads[i]
			s.leads[i] = *lead
			if err := s.persist(); err != nil {
				s.leads[i] = previous
				return err
			}
			return nil
		}
	}
	return domain.ErrLeadNotFound
}

// Delete removes the lead with the given id.
func (s *Store) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.leads {
		if s.leads[i].ID == id {
			previous := s.leads
			s.leads = append(append([]domain.Lead{}, s.leads[:i]...), s.leads[i+1:]...)
			if err := s.persist(); err != nil {
				s.leads = previous
				return err
			}
			return nil
		}
	}
	return domain.ErrLeadNotFound
}

// LoadAll returns every stored lead in insertion order.
func (s *Store) LoadAll() []domain.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Lead, len(s.leads))
	copy(out, s.leads)
	return out
}

// QualifiedLeads returns leads at or above the threshold.
// A non-positive threshold falls back to the configured one.
func (s *Store) QualifiedLeads(threshold int) []domain.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if threshold <= 0 {
		threshold = s.threshold
	}

	out := make([]domain.Lead, 0)
	for _, l := range s.leads {
		if l.IsQualified(threshold) {
			out = append(out, l)
		}
	}
	return out
}

// LeadsByIndustry returns leads whose industry matches, case-insensitively.
func (s *Store) LeadsByIndustry(industry string) []domain.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Lead, 0)
	for _, l := range s.leads {
		if strings.EqualFold(l.Industry, industry) {
			out = append(out, l)
		}
	}
	return out
}

// Statistics summarizes the stored leads.
type Statistics struct {
	Total             int            `json:"total"`
	Qualified         int            `json:"qualified"`
	QualificationRate float64        `json:"qualification_rate"`
	AverageScore      float64        `json:"average_score"`
	MinScore          int            `json:"min_score"`
	MaxScore          int            `json:"max_score"`
	Industries        map[string]int `json:"industries"`
	TopIndustry       string         `json:"top_industry,omitempty"`
}

// Statistics computes aggregate statistics over all stored leads.
func (s *Store) Statistics() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Statistics{Industries: make(map[string]int)}
	stats.Total = len(s.leads)
	if stats.Total == 0 {
		return stats
	}

	sum := 0
	stats.MinScore = s.leads[0].Score
	stats.MaxScore = s.leads[0].Score
	for _, l := range s.leads {
		sum += l.Score
		if l.Score < stats.MinScore {
			stats.MinScore = l.Score
		}
		if l.Score > stats.MaxScore {
			stats.MaxScore = l.Score
		}
		if l.IsQualified(s.threshold) {
			stats.Qualified++
		}
		stats.Industries[l.Industry]++
	}

	stats.QualificationRate = float64(stats.Qualified) / float64(stats.Total) * 100
	stats.AverageScore = float64(sum) / float64(stats.Total)

	// Deterministic pick: highest count, ties broken alphabetically.
	industries := make([]string, 0, len(stats.Industries))
	for name := range stats.Industries {
		industries = append(industries, name)
	}
	sort.Strings(industries)
	best := 0
	for _, name := range industries {
		if stats.Industries[name] > best {
			best = stats.Industries[name]
			stats.TopIndustry = name
		}
	}
	return stats
}

// Backup copies the current state to backupPath. An empty path derives a
// timestamped sibling of the data file.
func (s *Store) Backup(backupPath string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if backupPath == "" {
		stamp := time.Now().UTC().Format("20060102_150405")
		ext := filepath.Ext(s.path)
		backupPath = s.path[:len(s.path)-len(ext)] + ".backup_" + stamp + ".json"
	}

	data, err := json.MarshalIndent(s.leads, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode backup: %w", err)
	}
	if err := os.WriteFile(backupPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	return backupPath, nil
}

// persist writes the store to disk atomically. Caller must hold the lock.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.leads, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode leads: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".leads-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write leads: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace lead store: %w", err)
	}
	return nil
}
