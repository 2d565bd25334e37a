// Package summary turns raw search records into repository descriptors.
package summary

import (
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
)

// daysPerYear converts elapsed days into years.
const daysPerYear = 365.25

// rawRepository mirrors the wire fields of one search item.
type rawRepository struct {
	Name            string  `json:"name"`
	FullName        string  `json:"full_name"`
	Description     *string `json:"description"`
	StargazersCount int     `json:"stargazers_count"`
	ForksCount      int     `json:"forks_count"`
	WatchersCount   int     `json:"watchers_count"`
	Language        *string `json:"language"`
	Size            int     `json:"size"`
	CreatedAt       *string `json:"created_at"`
	UpdatedAt       *string `json:"updated_at"`
	DefaultBranch   string  `json:"default_branch"`
	CloneURL        string  `json:"clone_url"`
	HTMLURL         string  `json:"html_url"`
}

// Summarizer projects raw records onto schema.Repository.
type Summarizer struct {
	now func() time.Time
}

// New returns a summarizer that measures age against the wall clock.
func New() *Summarizer {
	return &Summarizer{now: time.Now}
}

// NewAt returns a summarizer with a fixed clock.
func NewAt(now time.Time) *Summarizer {
	return &Summarizer{now: func() time.Time { return now }}
}

// Summarize decodes one raw record. A missing or malformed timestamp or an
// undecodable record yields a *contract.ParseError.
func (s *Summarizer) Summarize(raw json.RawMessage) (schema.Repository, error) {
	var r rawRepository
	if err := json.Unmarshal(raw, &r); err != nil {
		return schema.Repository{}, &contract.ParseError{Err: err}
	}

	createdAt, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return schema.Repository{}, &contract.ParseError{Repository: r.FullName, Field: schema.ColCreatedAt, Err: err}
	}
	updatedAt, err := parseTimestamp(r.UpdatedAt)
	if err != nil {
		return schema.Repository{}, &contract.ParseError{Repository: r.FullName, Field: schema.ColUpdatedAt, Err: err}
	}

	repo := schema.Repository{
		Name:          r.Name,
		FullName:      r.FullName,
		Description:   r.Description,
		Stars:         max(r.StargazersCount, 0),
		Forks:         max(r.ForksCount, 0),
		Watchers:      max(r.WatchersCount, 0),
		SizeKB:        max(r.Size, 0),
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
		AgeYears:      AgeYears(createdAt, s.now()),
		DefaultBranch: r.DefaultBranch,
		CloneURL:      r.CloneURL,
		HTMLURL:       r.HTMLURL,
	}
	if r.Language != nil {
		repo.Language = *r.Language
	}
	return repo, nil
}

// AgeYears returns the whole days between created and now divided by 365.25,
// rounded to 2 decimals. Future creation dates yield 0.
func AgeYears(created, now time.Time) float64 {
	days := math.Floor(now.Sub(created).Hours() / 24)
	if days <= 0 {
		return 0
	}
	return math.Round(days/daysPerYear*100) / 100
}

func parseTimestamp(v *string) (time.Time, error) {
	if v == nil || *v == "" {
		return time.Time{}, errors.New("timestamp is missing")
	}
	return time.Parse(schema.TimestampLayout, *v)
}
