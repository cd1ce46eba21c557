package models

import (
	"regexp"
	"strings"
)

// Rank is the scout's troop level.
type Rank string

const (
	RankLion         Rank = "lion"
	RankTiger        Rank = "tiger"
	RankWolf         Rank = "wolf"
	RankBear         Rank = "bear"
	RankWebelos      Rank = "webelos"
	RankArrowOfLight Rank = "arrow_of_light"
)

// Ranks lists ranks in troop order.
var Ranks = []Rank{RankLion, RankTiger, RankWolf, RankBear, RankWebelos, RankArrowOfLight}

// IsValid reports whether r is one of the known ranks.
func (r Rank) IsValid() bool {
	for _, known := range Ranks {
		if r == known {
			return true
		}
	}
	return false
}

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9]+(?:[-_][A-Za-z0-9]+)*$`)

// IsValidSlug reports whether slug is safe to embed in a referral URL.
func IsValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// Scout represents a fundraising participant
type Scout struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Slug         string   `json:"slug"`
	Rank         Rank     `json:"rank"`
	Email        string   `json:"email,omitempty"`
	ParentName   string   `json:"parentName"`
	ParentEmails []string `json:"parentEmails"`
	Active       bool     `json:"active"`
}

// Validate checks required fields and formats.
func (s *Scout) Validate() error {
	errs := ValidationErrors{}
	if strings.TrimSpace(s.Name) == "" {
		errs.Add("name", "name is required")
	}
	if s.Slug == "" {
		errs.Add("slug", "slug is required")
	} else if !IsValidSlug(s.Slug) {
		errs.Add("slug", "slug may only contain letters, numbers, '-' and '_'")
	}
	if !s.Rank.IsValid() {
		errs.Add("rank", "rank must be one of lion, tiger, wolf, bear, webelos, arrow_of_light")
	}
	if s.Email != "" && !IsValidEmail(s.Email) {
		errs.Add("email", "scout email is not valid")
	}
	if len(s.ParentEmails) == 0 {
		errs.Add("parentEmails", "at least one parent email is required")
	}
	for _, e := range s.ParentEmails {
		if !IsValidEmail(e) {
			errs.Add("parentEmails", "parent email "+e+" is not valid")
		}
	}
	return errs.Err()
}

// SaveScoutRequest represents the request body for creating or updating a scout
// Example: {"name": "Sam Rivera", "slug": "sam-rivera", "rank": "wolf", "parentName": "Ana Rivera",
// "parentEmails": ["ana@example.com"], "active": true}
type SaveScoutRequest struct {
	Scout
	ConfirmSlugChange bool `json:"confirmSlugChange,omitempty"`
}

// ScoutListResponse represents the response for listing scouts
type ScoutListResponse struct {
	Scouts []Scout `json:"scouts"`
}
