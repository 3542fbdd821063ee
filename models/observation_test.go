package models

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestObservation_Validate(t *testing.T) {
	tests := []struct {
		name        string
		observation Observation
		want        error
	}{
		{
			"empty note, no photos",
			Observation{},
			ErrEmptyObservation,
		},
		{
			"blank note, no photos",
			Observation{Note: "  \n\t"},
			ErrEmptyObservation,
		},
		{
			"empty note, one photo",
			Observation{Photos: []Photo{{ID: 1}}},
			nil,
		},
		{
			"note, no photos",
			Observation{Note: "grey tabby under the car"},
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.observation.Validate(); got != tt.want {
				t.Errorf("Observation.Validate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestObservation_SyncDateWithPhotos(t *testing.T) {
	entered := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	t1 := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	t2 := time.Date(2023, 5, 2, 8, 30, 0, 0, time.UTC)
	helsinki := time.FixedZone("EEST", 3*3600)
	tests := []struct {
		name   string
		photos []Photo
		want   time.Time
	}{
		{"no photos keeps entered date", nil, entered},
		{"single photo", []Photo{{TakenAt: t1}}, t1},
		{"latest photo wins", []Photo{{TakenAt: t2}, {TakenAt: t1}}, t2},
		{"result is UTC", []Photo{{TakenAt: t1.In(helsinki)}}, t1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Observation{Date: entered, Photos: tt.photos}
			o.SyncDateWithPhotos()
			if !o.Date.Equal(tt.want) || o.Date.Location() != time.UTC {
				t.Errorf("Observation.Date = %v, want %v", o.Date, tt.want)
			}
		})
	}
}

func TestAverageLocation(t *testing.T) {
	tests := []struct {
		name      string
		locations []Location
		want      Location
		wantOK    bool
	}{
		{"empty", nil, Location{}, false},
		{"single", []Location{{10, 20}}, Location{10, 20}, true},
		{"two", []Location{{10, 20}, {20, 30}}, Location{15, 25}, true},
		{"three", []Location{{1, 1}, {2, 2}, {6, -9}}, Location{3, -2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AverageLocation(tt.locations)
			if ok != tt.wantOK || !reflect.DeepEqual(got, tt.want) {
				t.Errorf("AverageLocation() = %v, %v, want %v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCat_Validate(t *testing.T) {
	tests := []struct {
		name    string
		catName string
		wantErr bool
	}{
		{"ok", "Mirri", false},
		{"blank", "   ", true},
		{"max length", strings.Repeat("ä", MaxCatNameLength), false},
		{"too long", strings.Repeat("a", MaxCatNameLength+1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Cat{Name: tt.catName}
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Cat.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCat_LatestPhotos(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC) }
	c := Cat{Observations: []Observation{
		{Date: day(1), Photos: []Photo{{ID: 1}, {ID: 2}}},
		{Date: day(3), Photos: []Photo{{ID: 5}}},
		{Date: day(2), Photos: []Photo{{ID: 3}, {ID: 4}}},
	}}
	ids := func(photos []Photo) (result []uint64) {
		for _, p := range photos {
			result = append(result, p.ID)
		}
		return
	}
	if got := ids(c.LatestPhotos(LatestPhotosNum)); !reflect.DeepEqual(got, []uint64{5, 3, 4, 1, 2}) {
		t.Errorf("Cat.LatestPhotos() = %v", got)
	}
	if got := ids(c.LatestPhotos(2)); !reflect.DeepEqual(got, []uint64{5, 3}) {
		t.Errorf("Cat.LatestPhotos(2) = %v", got)
	}
	if c.Observations[0].Date != day(1) {
		t.Error("Cat.LatestPhotos() must not reorder the loaded observations")
	}
}

func TestPhoto_GetLocation(t *testing.T) {
	lat, lng := 35.5, 139.25
	if _, ok := (&Photo{GpsLat: &lat}).GetLocation(); ok {
		t.Error("Photo.GetLocation() with only latitude should not be ok")
	}
	got, ok := (&Photo{GpsLat: &lat, GpsLong: &lng}).GetLocation()
	if !ok || got != (Location{lat, lng}) {
		t.Errorf("Photo.GetLocation() = %v, %v", got, ok)
	}
}
