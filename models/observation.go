package models

import (
	"errors"
	"strings"
	"time"
)

var ErrEmptyObservation = errors.New("observation must have either photos or a note")

// Observation is a single sighting: when, where, optional note, photos and known cat
type Observation struct {
	ID        uint64    `gorm:"primaryKey"`
	CreatedAt int64     `gorm:"autoCreateTime"`
	UpdatedAt int64     `gorm:"autoUpdateTime"`
	Date      time.Time `gorm:"index;not null"`
	Note      string    `gorm:"type:text"`
	GpsLat    float64
	GpsLong   float64
	CatID     *uint64 `gorm:"index"`
	Cat       *Cat
	Photos    []Photo `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (o *Observation) Validate() error {
	if strings.TrimSpace(o.Note) == "" && len(o.Photos) == 0 {
		return ErrEmptyObservation
	}
	return nil
}

// SyncDateWithPhotos forces the date to the latest photo time. Photo metadata wins over
// whatever the user entered.
func (o *Observation) SyncDateWithPhotos() {
	if len(o.Photos) == 0 {
		return
	}
	latest := o.Photos[0].TakenAt
	for _, p := range o.Photos[1:] {
		if p.TakenAt.After(latest) {
			latest = p.TakenAt
		}
	}
	o.Date = latest.UTC()
}

func (o *Observation) GetLocation() Location {
	return Location{Lat: o.GpsLat, Lng: o.GpsLong}
}
