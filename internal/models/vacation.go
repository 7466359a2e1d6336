package models

import (
	"strings"
	"time"

	"github.com/TripShare-io/tripshare/internal/apperr"
)

// DateLayout is the wire and storage format for vacation dates.
const DateLayout = "2006-01-02"

// DefaultImage is the sentinel filename for vacations without an uploaded
// image. It is shared between clients and must never be deleted.
const DefaultImage = "default.jpg"

// Vacation represents a vacation listing. FollowersCount and IsFollowing
// are computed per query, not stored.
type Vacation struct {
	ID             int64   `json:"id"`
	Destination    string  `json:"destination"`
	Description    string  `json:"description"`
	StartDate      string  `json:"startDate"`
	EndDate        string  `json:"endDate"`
	Price          float64 `json:"price"`
	ImageFileName  string  `json:"imageFileName"`
	FollowersCount int     `json:"followersCount"`
	IsFollowing    bool    `json:"isFollowing"`
}

// VacationInput holds the mutable vacation fields submitted on create and
// update.
type VacationInput struct {
	Destination string
	Description string
	StartDate   string
	EndDate     string
	Price       float64
}

// Validate checks field presence, the price range and date ordering.
// requireFuture additionally rejects start dates before today; it applies
// on create only, so existing listings stay editable after they begin.
func (in *VacationInput) Validate(requireFuture bool, now time.Time) error {
	if strings.TrimSpace(in.Destination) == "" || strings.TrimSpace(in.Description) == "" ||
		in.StartDate == "" || in.EndDate == "" {
		return apperr.Validation("All fields are required")
	}
	if in.Price < 0 || in.Price > 10000 {
		return apperr.Validation("Price must be between 0 and 10,000")
	}

	start, err := time.Parse(DateLayout, in.StartDate)
	if err != nil {
		return apperr.Validation("Invalid start date")
	}
	end, err := time.Parse(DateLayout, in.EndDate)
	if err != nil {
		return apperr.Validation("Invalid end date")
	}

	if requireFuture {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if start.Before(today) {
			return apperr.Validation("Start date cannot be in the past")
		}
	}
	if end.Before(start) {
		return apperr.Validation("End date cannot be before start date")
	}
	return nil
}

// ReportRow is one entry of the follower report, grouped per vacation.
type ReportRow struct {
	Destination    string `json:"destination"`
	FollowersCount int    `json:"followersCount"`
}
