package models

import (
	"time"

	"gorm.io/gorm"
)

// Photo is a single uploaded JPEG with its thumbnail. ObservationID is nil until the photo is
// attached to an observation (or forever, if the form was abandoned).
type Photo struct {
	ID            uint64    `gorm:"primaryKey"`
	ObservationID *uint64   `gorm:"index"`
	TakenAt       time.Time `gorm:"not null"`
	GpsLat        *float64
	GpsLong       *float64
	Width         int    // of the original image, not the thumbnail
	Height        int    // of the original image, not the thumbnail
	OriginalURL   string `gorm:"type:varchar(1000);not null"`
	ThumbURL      string `gorm:"type:varchar(1000);not null"`
}

func (p *Photo) BeforeSave(tx *gorm.DB) (err error) {
	p.TakenAt = p.TakenAt.UTC()
	return
}

// GetLocation returns the EXIF location, if both coordinates were found
func (p *Photo) GetLocation() (Location, bool) {
	if p.GpsLat == nil || p.GpsLong == nil {
		return Location{}, false
	}
	return Location{Lat: *p.GpsLat, Lng: *p.GpsLong}, true
}

func (p *Photo) IsOrphaned() bool {
	return p.ObservationID == nil
}
