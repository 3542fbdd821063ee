package models

// Location is a plain WGS84 point
type Location struct {
	Lat float64
	Lng float64
}

// AverageLocation is the unweighted arithmetic mean of all points. The second result is
// false for an empty input, as the average is undefined then.
func AverageLocation(locations []Location) (Location, bool) {
	if len(locations) == 0 {
		return Location{}, false
	}
	var sumLat, sumLng float64
	for _, l := range locations {
		sumLat += l.Lat
		sumLng += l.Lng
	}
	n := float64(len(locations))
	return Location{Lat: sumLat / n, Lng: sumLng / n}, true
}
