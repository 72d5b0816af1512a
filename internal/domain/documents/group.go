package documents

import (
	"time"

	"tourledger/internal/core/id"
)

// TourGroup is the travelling party a settlement is computed for.
type TourGroup struct {
	ID             id.ID     `db:"id" json:"id"`
	Code           string    `db:"code" json:"code"`
	Name           string    `db:"name" json:"name"`
	TravellerCount int       `db:"traveller_count" json:"travellerCount"`
	DepartureDate  time.Time `db:"departure_date" json:"departureDate"`
}
