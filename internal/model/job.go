package model

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Type partitions listings into full jobs and internships.
type Type string

const (
	TypeJob        Type = "job"
	TypeInternship Type = "internship"
)

// ErrInvalidType is returned by ParseType for anything outside the enum.
var ErrInvalidType = errors.New("model: invalid job type")

// ParseType normalizes s into a Type. Empty input yields TypeJob.
func ParseType(s string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case "", TypeJob:
		return TypeJob, nil
	case TypeInternship:
		return TypeInternship, nil
	}
	return "", errors.Wrapf(ErrInvalidType, "%q", s)
}

// Job represents a single posting in the store.
type Job struct {
	ID            string     `json:"_id"`
	Slug          string     `json:"slug"`
	Title         string     `json:"title"`
	Company       string     `json:"company"`
	Img           string     `json:"img,omitempty"`
	Description   string     `json:"description"`
	Location      string     `json:"location"`
	IsWFH         bool       `json:"isWFH"`
	Tags          []string   `json:"tags"`
	ApplyURL      string     `json:"applyUrl,omitempty"`
	Type          Type       `json:"type"`
	PostedAt      time.Time  `json:"postedAt"`
	Role          string     `json:"role,omitempty"`
	Qualification string     `json:"qualification,omitempty"`
	Batch         string     `json:"batch,omitempty"`
	Experience    string     `json:"experience,omitempty"`
	Salary        string     `json:"salary,omitempty"`
	LastDate      *time.Time `json:"lastDate,omitempty"`
}

// Expired reports whether the application window closed before now.
// Jobs without a last date never expire.
func (j Job) Expired(now time.Time) bool {
	return j.LastDate != nil && j.LastDate.Before(now)
}

// Key returns a deduplication key for this job.
// Uses the apply URL when available, otherwise falls back to title+company.
func (j Job) Key() string {
	if j.ApplyURL != "" {
		return strings.ToLower(j.ApplyURL)
	}
	return strings.ToLower(j.Title + "|" + j.Company)
}

// Prepare fills creation-time defaults: id, postedAt, type and slug.
// Fields already set are left untouched so a slug is never regenerated.
func (j *Job) Prepare(now time.Time) error {
	if strings.TrimSpace(j.Title) == "" {
		return errors.New("model: title is required")
	}
	t, err := ParseType(string(j.Type))
	if err != nil {
		return err
	}
	j.Type = t
	if j.ID == "" {
		j.ID = NewID(now)
	}
	if j.PostedAt.IsZero() {
		j.PostedAt = now
	}
	if j.Slug == "" {
		j.Slug = Slug(j.Title, now, j.ID)
	}
	if j.Tags == nil {
		j.Tags = []string{}
	}
	return nil
}
