package spot

// Spot is a parking location with capacity counters. It is server-owned and
// read-only from the client's perspective: it is refreshed by re-fetching,
// never mutated locally.
type Spot struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	Address        string  `json:"address"`
	Latitude       float64 `json:"latitude,omitempty"`
	Longitude      float64 `json:"longitude,omitempty"`
	AvailableSpots int     `json:"available_spots"`
	TotalSpots     int     `json:"total_spots"`
	PricePerHour   float64 `json:"price_per_hour"`
	Features       string  `json:"features,omitempty"`
	Rating         float64 `json:"rating,omitempty"`
	Distance       string  `json:"distance,omitempty"`
	WalkTime       string  `json:"walk_time,omitempty"`
}

// Full reports whether the spot has no free capacity left.
func (s *Spot) Full() bool {
	return s.AvailableSpots <= 0
}
