package calendar

import (
	"sort"

	"hallkal/internal/model"
)

// FacilityGroup is one facility's reservations within a single day.
type FacilityGroup struct {
	FacilityNumber string
	Reservations   []model.Reservation
}

// GroupByFacility groups one day's reservation list by facility. Groups
// appear in order of each facility's first occurrence in the day list.
// Within a group the entries are ordered by slot precedence (first
// window, second window, then unrecognized codes in their original
// relative order).
func GroupByFacility(dayReservations []model.Reservation) []FacilityGroup {
	byFacility := make(map[string]int, len(dayReservations))
	groups := make([]FacilityGroup, 0, len(dayReservations))

	for _, r := range dayReservations {
		i, ok := byFacility[r.FacilityNumber]
		if !ok {
			i = len(groups)
			byFacility[r.FacilityNumber] = i
			groups = append(groups, FacilityGroup{FacilityNumber: r.FacilityNumber})
		}
		groups[i].Reservations = append(groups[i].Reservations, r)
	}

	for i := range groups {
		rs := groups[i].Reservations
		sort.SliceStable(rs, func(a, b int) bool {
			return model.ParseTimeSlot(rs[a].TimeSlot).Precedence() <
				model.ParseTimeSlot(rs[b].TimeSlot).Precedence()
		})
	}
	return groups
}

// DistrictGroup is one district's slice of the facility catalog.
type DistrictGroup struct {
	District   string
	Facilities []model.Facility
}

// GroupByDistrict groups the facility catalog by district, in order of
// each district's first appearance. Pure function of the catalog;
// reservations and selection play no part.
func GroupByDistrict(facilities []model.Facility) []DistrictGroup {
	byDistrict := make(map[string]int, len(facilities))
	groups := make([]DistrictGroup, 0, len(facilities))

	for _, f := range facilities {
		i, ok := byDistrict[f.District]
		if !ok {
			i = len(groups)
			byDistrict[f.District] = i
			groups = append(groups, DistrictGroup{District: f.District})
		}
		groups[i].Facilities = append(groups[i].Facilities, f)
	}
	return groups
}

// FacilityNumbers extracts the id list of a district group, the input
// ToggleDistrict expects.
func (g DistrictGroup) FacilityNumbers() []string {
	ids := make([]string, len(g.Facilities))
	for i, f := range g.Facilities {
		ids[i] = f.FacilityNumber
	}
	return ids
}
