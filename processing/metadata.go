package processing

import (
	"bytes"
	"log"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/zsefvlol/timezonemapper"
)

const (
	exifTimeLayout = "2006:01:02 15:04:05"
	exifZeroTime   = "0000:00:00 00:00:00"
)

// Metadata is what we use from the EXIF block. Any field may be missing.
type Metadata struct {
	TakenAt *time.Time // UTC
	GpsLat  *float64
	GpsLong *float64
}

type MetadataOptions struct {
	// EXIF times have no zone, they are read in this location (time.Local if nil)
	Location *time.Location
	// ZoneFromGPS uses the time zone at the photo's coordinates instead, when it has them
	ZoneFromGPS bool
}

// ExtractMetadata never fails: unreadable or missing EXIF data just leaves fields empty
func ExtractMetadata(data []byte, opts MetadataOptions) (result Metadata) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("EXIF parser panic: %v", r)
			result = Metadata{}
		}
	}()
	x, err := exif.Decode(bytes.NewReader(data))
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		return
	}
	result.GpsLat = readCoordinate(x, exif.GPSLatitude)
	result.GpsLong = readCoordinate(x, exif.GPSLongitude)
	if tag, err := x.Get(exif.DateTimeOriginal); err == nil {
		if s, err := tag.StringVal(); err == nil {
			result.TakenAt = parseOriginalTime(s, opts.zoneFor(result.GpsLat, result.GpsLong))
		}
	}
	return
}

func (o MetadataOptions) zoneFor(lat, long *float64) *time.Location {
	if o.ZoneFromGPS && lat != nil && long != nil {
		if name := timezonemapper.LatLngToTimezoneString(*lat, *long); name != "" {
			if zone, err := time.LoadLocation(name); err == nil {
				return zone
			}
		}
	}
	if o.Location != nil {
		return o.Location
	}
	return time.Local
}

// parseOriginalTime returns nil for the all-zeros placeholder and anything not in EXIF format
func parseOriginalTime(s string, zone *time.Location) *time.Time {
	s = strings.TrimSpace(strings.TrimRight(s, "\x00"))
	if s == "" || s == exifZeroTime {
		return nil
	}
	t, err := time.ParseInLocation(exifTimeLayout, s, zone)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

// readCoordinate reads a GPS axis stored as degrees, minutes, seconds rationals.
// There is no hemisphere handling, the result is always the unsigned magnitude.
func readCoordinate(x *exif.Exif, field exif.FieldName) *float64 {
	tag, err := x.Get(field)
	if err != nil || tag.Count != 3 {
		return nil
	}
	var parts [3][2]int64
	for i := range parts {
		num, den, err := tag.Rat2(i)
		if err != nil {
			return nil
		}
		parts[i] = [2]int64{num, den}
	}
	return rationalsToDegrees(parts)
}

// rationalsToDegrees uses only the numerators of degrees and minutes, the seconds are
// divided properly. A zero seconds denominator means the value is unusable.
func rationalsToDegrees(parts [3][2]int64) *float64 {
	if parts[2][1] == 0 {
		return nil
	}
	degrees := float64(parts[0][0])
	minutes := float64(parts[1][0]) / 60
	seconds := float64(parts[2][0]) / float64(parts[2][1]) / 3600
	result := degrees + minutes + seconds
	return &result
}
