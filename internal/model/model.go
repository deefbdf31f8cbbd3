package model

import "time"

// DateFormat is the canonical calendar-day layout used across the service.
const DateFormat = "2006-01-02"

// Facility is one reservable venue from the snapshot catalog.
// facility_number is the stable identity; everything else is display metadata.
type Facility struct {
	FacilityNumber string `json:"facility_number"`
	District       string `json:"district"`
	FacilityName   string `json:"facility_name"`
	LocationType   string `json:"location_type"`
	Capacity       string `json:"capacity"`
	Price          string `json:"price,omitempty"`
	URL            string `json:"url"`
}

// Reservation is a single (facility, date, time slot) observation.
// The tuple is not unique: the upstream feed may legitimately carry
// several records for the same slot and they are all preserved.
type Reservation struct {
	FacilityNumber  string `json:"facility_number"`
	ReservationDate string `json:"reservation_date"`
	TimeSlot        string `json:"time_slot"`
	Status          string `json:"status"`
}

// Date parses the reservation's calendar date.
func (r Reservation) Date() (time.Time, error) {
	return time.Parse(DateFormat, r.ReservationDate)
}

// Snapshot is the complete point-in-time bundle served by the crawler.
// It is immutable once loaded; derived views are always rebuilt from it.
type Snapshot struct {
	LastCrawledAt string        `json:"lastCrawledAt"`
	Facilities    []Facility    `json:"facilities"`
	Reservations  []Reservation `json:"reservations"`
}

// FacilityByNumber builds a lookup map over the catalog. When the same
// facility number appears twice, the later record wins; lookups only
// promise to resolve to a matching facility.
func (s *Snapshot) FacilityByNumber() map[string]Facility {
	m := make(map[string]Facility, len(s.Facilities))
	for _, f := range s.Facilities {
		m[f.FacilityNumber] = f
	}
	return m
}
