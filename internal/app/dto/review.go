package dto

import (
	"time"

	domainreviews "rento/internal/domain/reviews"
)

type Review struct {
	ID             string    `json:"id"`
	ApartmentID    string    `json:"apartment_id"`
	UserID         string    `json:"user_id"`
	UserName       string    `json:"user_name,omitempty"`
	ApartmentTitle string    `json:"apartment_title,omitempty"`
	Rating         int       `json:"rating"`
	Comment        string    `json:"comment"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ReviewStats struct {
	Total   int     `json:"total"`
	Average float64 `json:"average"`
}

type ListingReviews struct {
	Reviews []Review    `json:"reviews"`
	Stats   ReviewStats `json:"stats"`
}

func MapReview(r *domainreviews.Review, userName, listingTitle string) Review {
	return Review{
		ID:             string(r.ID),
		ApartmentID:    string(r.ListingID),
		UserID:         r.AuthorID,
		UserName:       userName,
		ApartmentTitle: listingTitle,
		Rating:         r.Rating,
		Comment:        r.Comment,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func MapReviewStats(s domainreviews.Stats) ReviewStats {
	return ReviewStats{Total: s.Total, Average: s.Average}
}
