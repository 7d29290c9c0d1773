package domain

// Activity is one suggested activity for a trip, as served by the
// TravelPlaner backend activity endpoint.
type Activity struct {
	ID          string  `json:"id"`
	TripID      string  `json:"trip_id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Score       float64 `json:"score"`
	Description string  `json:"description,omitempty"`
}
