package calendar

import (
	"fmt"

	"hallkal/internal/model"
)

// DateIndex maps a canonical "2006-01-02" day key to the reservations on
// that day, restricted to the selection, in snapshot order.
type DateIndex map[string][]model.Reservation

// BuildDateIndex indexes the reservation collection by calendar day in a
// single pass. Reservations for unselected facilities are skipped; an
// empty selection applies no facility filter at all. A reservation whose
// date does not parse aborts the build: misfiling it silently on a wrong
// day would be worse than a visible failure.
func BuildDateIndex(reservations []model.Reservation, selection Selection) (DateIndex, error) {
	idx := make(DateIndex)
	for i, r := range reservations {
		if !selection.IsEmpty() && !selection.Contains(r.FacilityNumber) {
			continue
		}
		day, err := r.Date()
		if err != nil {
			return nil, fmt.Errorf("reservation %d (facility %s): bad date %q: %w",
				i, r.FacilityNumber, r.ReservationDate, err)
		}
		key := day.Format(model.DateFormat)
		idx[key] = append(idx[key], r)
	}
	return idx, nil
}

// ForDay returns the reservations indexed under a day, never nil.
func (idx DateIndex) ForDay(day string) []model.Reservation {
	return idx[day]
}
