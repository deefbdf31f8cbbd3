package service

import (
	"time"

	"hallkal/internal/calendar"
	"hallkal/internal/model"
)

// SelectableFacility pairs a catalog entry with its selection flag.
type SelectableFacility struct {
	model.Facility
	Selected bool `json:"selected"`
}

// DistrictView is one district of the filter sidebar.
type DistrictView struct {
	District    string               `json:"district"`
	AllSelected bool                 `json:"allSelected"`
	Facilities  []SelectableFacility `json:"facilities"`
}

// FacilityDayView is one facility's reservations on one day, with the
// catalog metadata and the display-priority status attached.
type FacilityDayView struct {
	Facility       model.Facility      `json:"facility"`
	Reservations   []model.Reservation `json:"reservations"`
	DominantStatus string              `json:"dominantStatus"`
}

// DayView is the detail view for a single calendar day.
type DayView struct {
	Date         string                `json:"date"`
	Reservations []model.Reservation   `json:"reservations"`
	Facilities   []FacilityDayView     `json:"facilities"`
	Counts       calendar.StatusCounts `json:"counts"`
	InRange      bool                  `json:"inRange"`
}

// DayCell is one cell of the month grid.
type DayCell struct {
	Date           string                `json:"date"`
	IsCurrentMonth bool                  `json:"isCurrentMonth"`
	IsToday        bool                  `json:"isToday"`
	InRange        bool                  `json:"inRange"`
	Counts         calendar.StatusCounts `json:"counts"`
	Facilities     []FacilityDayView     `json:"facilities"`
}

// MonthView is the full grid for one rendered month: whole weeks from
// the Sunday on or before the 1st through the Saturday on or after the
// last day.
type MonthView struct {
	Year  int       `json:"year"`
	Month int       `json:"month"`
	Days  []DayCell `json:"days"`
}

// Day builds the detail view for one day under the current filters.
// Reservations referencing facilities absent from the catalog stay in
// the flat list and the counts but are excluded from the facility
// grouping, which needs catalog metadata to mean anything.
func (s *Service) Day(dayKey string) DayView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	view := DayView{Date: dayKey, InRange: true}
	if d, err := time.Parse(model.DateFormat, dayKey); err == nil {
		view.InRange = s.dateRange.InRange(d)
	}
	if s.snap == nil {
		return view
	}

	dayList := s.index.ForDay(dayKey)
	view.Reservations = dayList
	view.Counts = calendar.CountByStatus(dayList)
	view.Facilities = facilityViews(s.snap.FacilityByNumber(), dayList)
	return view
}

// Month builds the calendar grid for one month under the current filters.
func (s *Service) Month(year int, month time.Month) MonthView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	gridStart := first.AddDate(0, 0, -int(first.Weekday()))
	gridEnd := last.AddDate(0, 0, int(time.Saturday-last.Weekday()))
	today := calendar.DayOf(time.Now().UTC())

	view := MonthView{Year: year, Month: int(month)}
	// One catalog lookup map for the whole grid, not one per cell.
	var catalog map[string]model.Facility
	if s.snap != nil {
		catalog = s.snap.FacilityByNumber()
	}
	for d := gridStart; !d.After(gridEnd); d = d.AddDate(0, 0, 1) {
		key := d.Format(model.DateFormat)
		cell := DayCell{
			Date:           key,
			IsCurrentMonth: d.Month() == month,
			IsToday:        d.Equal(today),
			InRange:        s.dateRange.InRange(d),
		}
		if s.snap != nil {
			dayList := s.index.ForDay(key)
			cell.Counts = calendar.CountByStatus(dayList)
			cell.Facilities = facilityViews(catalog, dayList)
		}
		view.Days = append(view.Days, cell)
	}
	return view
}

// facilityViews groups a day list by facility and attaches catalog
// metadata from the prebuilt lookup map.
func facilityViews(catalog map[string]model.Facility, dayList []model.Reservation) []FacilityDayView {
	if len(dayList) == 0 {
		return nil
	}

	var out []FacilityDayView
	for _, g := range calendar.GroupByFacility(dayList) {
		f, ok := catalog[g.FacilityNumber]
		if !ok {
			// Dangling reference: no catalog entry to render against.
			continue
		}
		out = append(out, FacilityDayView{
			Facility:       f,
			Reservations:   g.Reservations,
			DominantStatus: calendar.DominantStatus(g.Reservations).String(),
		})
	}
	return out
}
