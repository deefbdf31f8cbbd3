package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"hallkal/internal/model"
	"hallkal/internal/snapshot"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context) (*model.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Snapshot), args.Error(1)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) RecordLoad(ctx context.Context, result string, facilities, reservations int) error {
	return m.Called(ctx, result, facilities, reservations).Error(0)
}

func testSnapshot() *model.Snapshot {
	return &model.Snapshot{
		LastCrawledAt: "2024-05-01T06:00:00Z",
		Facilities: []model.Facility{
			{FacilityNumber: "F1", District: "Gangnam", FacilityName: "Hall One"},
			{FacilityNumber: "F2", District: "Mapo", FacilityName: "Hall Two"},
			{FacilityNumber: "F3", District: "Gangnam", FacilityName: "Hall Three"},
		},
		Reservations: []model.Reservation{
			{FacilityNumber: "F1", ReservationDate: "2024-05-01", TimeSlot: "L", Status: "confirmed"},
			{FacilityNumber: "F1", ReservationDate: "2024-05-01", TimeSlot: "D", Status: "available"},
			{FacilityNumber: "F2", ReservationDate: "2024-05-01", TimeSlot: "A", Status: "pending"},
			{FacilityNumber: "F2", ReservationDate: "2024-05-15", TimeSlot: "B", Status: "available"},
			{FacilityNumber: "GHOST", ReservationDate: "2024-05-01", TimeSlot: "L", Status: "available"},
		},
	}
}

func newTestService(t *testing.T, fetcher Fetcher, recorder LoadRecorder) *Service {
	t.Helper()
	logger := zerolog.New(io.Discard)
	return New(fetcher, recorder, &logger)
}

func TestService_ReloadSelectsAllFacilities(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("Fetch", mock.Anything).Return(testSnapshot(), nil)

	svc := newTestService(t, fetcher, nil)
	require.NoError(t, svc.Reload(context.Background()))

	assert.True(t, svc.Loaded())
	st := svc.Stats()
	assert.Equal(t, 3, st.Facilities)
	assert.Equal(t, 5, st.Reservations)
	assert.Equal(t, 3, st.SelectedFacilities)
	assert.True(t, svc.IsSelected("F2"))
}

func TestService_ReloadFetchFailureKeepsPreviousSnapshot(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("Fetch", mock.Anything).Return(testSnapshot(), nil).Once()
	fetcher.On("Fetch", mock.Anything).Return(nil, snapshot.ErrFetchFailed).Once()

	recorder := new(mockRecorder)
	recorder.On("RecordLoad", mock.Anything, "ok", 3, 5).Return(nil).Once()
	recorder.On("RecordLoad", mock.Anything, "error", 0, 0).Return(nil).Once()

	svc := newTestService(t, fetcher, recorder)
	require.NoError(t, svc.Reload(context.Background()))

	err := svc.Reload(context.Background())
	assert.ErrorIs(t, err, snapshot.ErrFetchFailed)
	assert.True(t, svc.Loaded())
	assert.Equal(t, 5, svc.Stats().Reservations)
	recorder.AssertExpectations(t)
}

func TestService_ReloadRejectsMalformedDates(t *testing.T) {
	bad := testSnapshot()
	bad.Reservations[2].ReservationDate = "garbage"

	fetcher := new(mockFetcher)
	fetcher.On("Fetch", mock.Anything).Return(bad, nil)

	svc := newTestService(t, fetcher, nil)
	err := svc.Reload(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "garbage")
	assert.False(t, svc.Loaded())
}

func TestService_DayView(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("Fetch", mock.Anything).Return(testSnapshot(), nil)

	svc := newTestService(t, fetcher, nil)
	require.NoError(t, svc.Reload(context.Background()))

	day := svc.Day("2024-05-01")
	// The default selection covers the catalog only, so the dangling
	// GHOST reservation is filtered out at index time.
	assert.Len(t, day.Reservations, 3)
	assert.Equal(t, 1, day.Counts.Confirmed)
	assert.Equal(t, 1, day.Counts.Available)
	assert.Equal(t, 1, day.Counts.Pending)

	require.Len(t, day.Facilities, 2)
	assert.Equal(t, "Hall One", day.Facilities[0].Facility.FacilityName)
	assert.Equal(t, "confirmed", day.Facilities[0].DominantStatus)
	assert.Equal(t, "pending", day.Facilities[1].DominantStatus)

	// F1 slots come back first-window first.
	assert.Equal(t, "L", day.Facilities[0].Reservations[0].TimeSlot)
	assert.Equal(t, "D", day.Facilities[0].Reservations[1].TimeSlot)
}

func TestService_DayViewEmptySelectionKeepsDanglingReference(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("Fetch", mock.Anything).Return(testSnapshot(), nil)

	svc := newTestService(t, fetcher, nil)
	require.NoError(t, svc.Reload(context.Background()))
	require.NoError(t, svc.ClearSelection())

	day := svc.Day("2024-05-01")
	// With no facility filter the flat list and counts carry the GHOST
	// reservation; its facility is absent from the catalog but the
	// day-level view does not need catalog metadata.
	assert.Len(t, day.Reservations, 4)
	assert.Equal(t, 2, day.Counts.Available)

	// The facility grouping still drops it: nothing to render against.
	require.Len(t, day.Facilities, 2)
	assert.Equal(t, "Hall One", day.Facilities[0].Facility.FacilityName)
}

func TestService_SelectionNarrowsViews(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("Fetch", mock.Anything).Return(testSnapshot(), nil)

	svc := newTestService(t, fetcher, nil)
	require.NoError(t, svc.Reload(context.Background()))

	// Toggle off F2 and F3, leaving only F1 selected.
	require.NoError(t, svc.ToggleFacility("F2"))
	require.NoError(t, svc.ToggleFacility("F3"))

	day := svc.Day("2024-05-01")
	assert.Len(t, day.Reservations, 2)
	for _, r := range day.Reservations {
		assert.Equal(t, "F1", r.FacilityNumber)
	}

	// Clearing the selection shows everything again, not nothing.
	require.NoError(t, svc.ClearSelection())
	assert.Len(t, svc.Day("2024-05-01").Reservations, 4)
}

func TestService_ToggleDistrict(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("Fetch", mock.Anything).Return(testSnapshot(), nil)

	svc := newTestService(t, fetcher, nil)
	require.NoError(t, svc.Reload(context.Background()))

	// All selected, so toggling Gangnam deselects F1 and F3.
	require.NoError(t, svc.ToggleDistrict("Gangnam"))
	assert.False(t, svc.IsSelected("F1"))
	assert.False(t, svc.IsSelected("F3"))
	assert.True(t, svc.IsSelected("F2"))

	districts := svc.Districts()
	require.Len(t, districts, 2)
	assert.Equal(t, "Gangnam", districts[0].District)
	assert.False(t, districts[0].AllSelected)
	assert.True(t, districts[1].AllSelected)

	// Toggling again restores the full selection.
	require.NoError(t, svc.ToggleDistrict("Gangnam"))
	assert.Equal(t, 3, svc.Stats().SelectedFacilities)
}

func TestService_ToggleAll(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("Fetch", mock.Anything).Return(testSnapshot(), nil)

	svc := newTestService(t, fetcher, nil)
	require.NoError(t, svc.Reload(context.Background()))

	require.NoError(t, svc.ToggleAll())
	assert.Equal(t, 0, svc.Stats().SelectedFacilities)

	require.NoError(t, svc.ToggleAll())
	assert.Equal(t, 3, svc.Stats().SelectedFacilities)
}

func TestService_DateRangeFlagsWithoutRebuild(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("Fetch", mock.Anything).Return(testSnapshot(), nil)

	svc := newTestService(t, fetcher, nil)
	require.NoError(t, svc.Reload(context.Background()))

	svc.SetDateRange(day(t, "2024-05-10"), time.Time{})

	early := svc.Day("2024-05-01")
	late := svc.Day("2024-05-15")
	assert.False(t, early.InRange)
	assert.True(t, late.InRange)
	// Out-of-range days still carry their data; range only flags them.
	assert.Len(t, early.Reservations, 3)
}

func TestService_MonthView(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("Fetch", mock.Anything).Return(testSnapshot(), nil)

	svc := newTestService(t, fetcher, nil)
	require.NoError(t, svc.Reload(context.Background()))

	view := svc.Month(2024, time.May)
	assert.Equal(t, 2024, view.Year)
	assert.Equal(t, 5, view.Month)

	// May 2024 renders as five whole weeks (Apr 28 through Jun 1).
	require.Len(t, view.Days, 35)
	assert.Equal(t, "2024-04-28", view.Days[0].Date)
	assert.Equal(t, "2024-06-01", view.Days[len(view.Days)-1].Date)
	assert.False(t, view.Days[0].IsCurrentMonth)

	var byDate = map[string]DayCell{}
	for _, c := range view.Days {
		byDate[c.Date] = c
	}
	assert.Equal(t, 3, byDate["2024-05-01"].Counts.Total())
	assert.Equal(t, 1, byDate["2024-05-15"].Counts.Available)
	assert.True(t, byDate["2024-05-03"].IsCurrentMonth)
}

func TestService_ViewsBeforeLoad(t *testing.T) {
	svc := newTestService(t, new(mockFetcher), nil)

	assert.False(t, svc.Loaded())
	assert.Nil(t, svc.Districts())
	assert.Empty(t, svc.Day("2024-05-01").Reservations)
	assert.Len(t, svc.Month(2024, time.May).Days, 35)
}

func TestService_RecorderFailureDoesNotFailReload(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("Fetch", mock.Anything).Return(testSnapshot(), nil)

	recorder := new(mockRecorder)
	recorder.On("RecordLoad", mock.Anything, "ok", 3, 5).Return(errors.New("disk full"))

	svc := newTestService(t, fetcher, recorder)
	assert.NoError(t, svc.Reload(context.Background()))
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(model.DateFormat, s)
	require.NoError(t, err)
	return d
}
