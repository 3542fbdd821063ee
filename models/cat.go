package models

import (
	"errors"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	MaxCatNameLength = 255
	LatestPhotosNum  = 20
)

var ErrInvalidCatName = errors.New("cat name is required and must be at most 255 characters")

// Cat is a known individual. GpsLat/GpsLong are derived from the linked observations
// (see catalog.Aggregator) and are never taken from user input after creation.
type Cat struct {
	ID           uint64 `gorm:"primaryKey"`
	CreatedAt    int64  `gorm:"autoCreateTime"`
	UpdatedAt    int64  `gorm:"autoUpdateTime"`
	Name         string `gorm:"type:varchar(255);index;not null"`
	Note         string `gorm:"type:text"`
	GpsLat       float64
	GpsLong      float64
	Observations []Observation `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}

func (c *Cat) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" || utf8.RuneCountInString(name) > MaxCatNameLength {
		return ErrInvalidCatName
	}
	return nil
}

// LatestPhotos returns up to count photos, newest observations first.
// NOTE: c.Observations and their Photos must be preloaded
func (c *Cat) LatestPhotos(count int) []Photo {
	observations := make([]Observation, len(c.Observations))
	copy(observations, c.Observations)
	sort.SliceStable(observations, func(i, j int) bool {
		return observations[i].Date.After(observations[j].Date)
	})
	result := []Photo{}
	for _, o := range observations {
		for _, p := range o.Photos {
			if len(result) >= count {
				return result
			}
			result = append(result, p)
		}
	}
	return result
}
