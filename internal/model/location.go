package model

// Location is a row of the available_workspace_locations view: a site
// offering at least one workspace of the requested type.
type Location struct {
	LocationID      int64   `json:"location_id"`
	Location        string  `json:"location"`
	City            string  `json:"city"`
	Type            string  `json:"type"`
	MinBookingPrice float64 `json:"min_booking_price"`
}

// Label renders "Location - City" as shown in location pickers.
func (l Location) Label() string {
	if l.City == "" {
		return l.Location
	}
	return l.Location + " - " + l.City
}

// NotReservable is shown in place of a reservation price for workspaces
// that cannot be reserved ahead.
const NotReservable = "Not Available For Reservation"

// Workspace is a validated catalog entry.  ReservationPrice holds either a
// number or NotReservable.
type Workspace struct {
	ID               string  `json:"id"`
	Type             string  `json:"type"`
	LocationID       string  `json:"location_id"`
	BasePrice        float64 `json:"base_price"`
	BookingPrice     float64 `json:"booking_price"`
	ReservationPrice any     `json:"reservation_price"`
}
