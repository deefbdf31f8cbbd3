package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	assert.True(t, ParseStatus("confirmed").IsConfirmed())
	assert.True(t, ParseStatus("available").IsAvailable())
	assert.True(t, ParseStatus("pending").IsPending())

	st := ParseStatus("on-hold")
	assert.True(t, st.IsUnknown())
	assert.Equal(t, "on-hold", st.String())
}

func TestParseTimeSlot(t *testing.T) {
	for _, code := range []string{"L", "A"} {
		assert.True(t, ParseTimeSlot(code).IsFirst(), code)
	}
	for _, code := range []string{"D", "B"} {
		assert.True(t, ParseTimeSlot(code).IsSecond(), code)
	}

	unknown := ParseTimeSlot("night")
	assert.False(t, unknown.IsFirst())
	assert.False(t, unknown.IsSecond())
	assert.Equal(t, "night", unknown.String())
	assert.Greater(t, unknown.Precedence(), ParseTimeSlot("D").Precedence())
}

func TestReservation_Date(t *testing.T) {
	d, err := Reservation{ReservationDate: "2024-05-01"}.Date()
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", d.Format(DateFormat))

	_, err = Reservation{ReservationDate: "05/01/2024"}.Date()
	assert.Error(t, err)
}

func TestSnapshot_FacilityByNumber(t *testing.T) {
	s := &Snapshot{Facilities: []Facility{
		{FacilityNumber: "F1", FacilityName: "Hall One"},
		{FacilityNumber: "F2", FacilityName: "Hall Two"},
		{FacilityNumber: "F1", FacilityName: "Hall One v2"},
	}}

	m := s.FacilityByNumber()
	assert.Len(t, m, 2)
	// Duplicate identity resolves to a matching facility; later wins here.
	assert.Equal(t, "Hall One v2", m["F1"].FacilityName)
}
