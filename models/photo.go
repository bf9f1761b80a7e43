package models

import (
	"time"
)

// Photo represents a photo metadata record sourced from the Pexels catalog.
// Every photo has exactly one owner; the owner is stamped from the caller's
// identity at creation and never reassigned.
type Photo struct {
	ID              int64     `json:"id" db:"id"`
	PexelsID        int64     `json:"pexels_id" db:"pexels_id"`
	Width           int       `json:"width" db:"width"`
	Height          int       `json:"height" db:"height"`
	URL             string    `json:"url" db:"url"`
	Photographer    string    `json:"photographer" db:"photographer"`
	PhotographerURL string    `json:"photographer_url" db:"photographer_url"`
	PhotographerID  int64     `json:"photographer_id" db:"photographer_id"`
	AvgColor        string    `json:"avg_color" db:"avg_color"`
	SrcOriginal     string    `json:"src_original" db:"src_original"`
	SrcLarge2x      string    `json:"src_large2x" db:"src_large2x"`
	SrcLarge        string    `json:"src_large" db:"src_large"`
	SrcMedium       string    `json:"src_medium" db:"src_medium"`
	SrcSmall        string    `json:"src_small" db:"src_small"`
	SrcPortrait     string    `json:"src_portrait" db:"src_portrait"`
	SrcLandscape    string    `json:"src_landscape" db:"src_landscape"`
	SrcTiny         string    `json:"src_tiny" db:"src_tiny"`
	Alt             *string   `json:"alt" db:"alt"`
	UserID          string    `json:"user_id" db:"user_id"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Photo model
func (Photo) TableName() string {
	return "photos"
}

// OwnedBy returns true if the photo belongs to the given user
func (p *Photo) OwnedBy(userID string) bool {
	return p.UserID == userID
}
