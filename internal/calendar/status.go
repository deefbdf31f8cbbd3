package calendar

import "hallkal/internal/model"

// StatusCounts holds per-status totals for one day's reservation list.
type StatusCounts struct {
	Confirmed int `json:"confirmed"`
	Available int `json:"available"`
	Pending   int `json:"pending"`
	Other     int `json:"other,omitempty"`
}

// CountByStatus tallies one day's reservations by status. Unrecognized
// statuses land in Other rather than being dropped, so totals always sum
// to the input length.
func CountByStatus(dayReservations []model.Reservation) StatusCounts {
	var c StatusCounts
	for _, r := range dayReservations {
		switch st := model.ParseStatus(r.Status); {
		case st.IsConfirmed():
			c.Confirmed++
		case st.IsAvailable():
			c.Available++
		case st.IsPending():
			c.Pending++
		default:
			c.Other++
		}
	}
	return c
}

// Total returns the number of reservations counted.
func (c StatusCounts) Total() int {
	return c.Confirmed + c.Available + c.Pending + c.Other
}

// DominantStatus is the display-priority rule for a facility-day group:
// confirmed outranks available whenever both exist; with neither present
// the first entry's raw status label is used as-is. Empty groups report
// an unknown status with an empty label.
func DominantStatus(group []model.Reservation) model.Status {
	hasAvailable := false
	for _, r := range group {
		st := model.ParseStatus(r.Status)
		if st.IsConfirmed() {
			return model.StatusConfirmed
		}
		if st.IsAvailable() {
			hasAvailable = true
		}
	}
	if hasAvailable {
		return model.StatusAvailable
	}
	if len(group) > 0 {
		return model.ParseStatus(group[0].Status)
	}
	return model.ParseStatus("")
}
