// Package service composes the calendar engine over the current
// snapshot and filter state, and exposes the views the presentation
// layer renders.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hallkal/internal/calendar"
	"hallkal/internal/metrics"
	"hallkal/internal/model"

	"github.com/rs/zerolog"
)

// Fetcher retrieves a fresh snapshot.
type Fetcher interface {
	Fetch(ctx context.Context) (*model.Snapshot, error)
}

// LoadRecorder persists the outcome of a snapshot load attempt.
type LoadRecorder interface {
	RecordLoad(ctx context.Context, result string, facilities, reservations int) error
}

// Service owns the current (snapshot, selection, range) triple. The date
// index is rebuilt in full whenever snapshot or selection changes
// identity; range changes only affect per-day flags and never trigger a
// rebuild. Reads and rebuilds share a RWMutex: a rebuild swaps in fresh
// structures, it never mutates the ones readers may hold.
type Service struct {
	fetcher  Fetcher
	recorder LoadRecorder
	logger   *zerolog.Logger

	mu        sync.RWMutex
	snap      *model.Snapshot
	selection calendar.Selection
	dateRange calendar.DateRange
	index     calendar.DateIndex
	loadedAt  time.Time
}

// New constructs a service with no snapshot loaded yet. recorder may be
// nil when load auditing is disabled.
func New(fetcher Fetcher, recorder LoadRecorder, logger *zerolog.Logger) *Service {
	return &Service{
		fetcher:   fetcher,
		recorder:  recorder,
		logger:    logger,
		selection: calendar.NewSelection(),
	}
}

// Reload fetches a snapshot and replaces the current one. Overlapping
// reloads are an accepted race: in-flight fetches are not cancelled and
// the last response to resolve wins. After a load every facility is
// selected, matching the calendar's initial state.
func (s *Service) Reload(ctx context.Context) error {
	snap, err := s.fetcher.Fetch(ctx)
	if err != nil {
		metrics.IncSnapshotLoad("error")
		s.recordLoad(ctx, "error", 0, 0)
		s.logger.Error().Err(err).Msg("snapshot load failed")
		return err
	}

	all := make([]string, len(snap.Facilities))
	for i, f := range snap.Facilities {
		all[i] = f.FacilityNumber
	}
	selection := calendar.NewSelection(all...)

	index, err := calendar.BuildDateIndex(snap.Reservations, selection)
	if err != nil {
		metrics.IncSnapshotLoad("error")
		s.recordLoad(ctx, "error", len(snap.Facilities), len(snap.Reservations))
		s.logger.Error().Err(err).Msg("snapshot rejected")
		return fmt.Errorf("index snapshot: %w", err)
	}
	metrics.IncIndexRebuild()

	s.mu.Lock()
	s.snap = snap
	s.selection = selection
	s.index = index
	s.loadedAt = time.Now()
	s.mu.Unlock()

	metrics.IncSnapshotLoad("ok")
	metrics.SetSnapshotSize(len(snap.Facilities), len(snap.Reservations))
	s.recordLoad(ctx, "ok", len(snap.Facilities), len(snap.Reservations))
	s.logger.Info().
		Int("facilities", len(snap.Facilities)).
		Int("reservations", len(snap.Reservations)).
		Str("last_crawled_at", snap.LastCrawledAt).
		Msg("snapshot loaded")
	return nil
}

func (s *Service) recordLoad(ctx context.Context, result string, facilities, reservations int) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordLoad(ctx, result, facilities, reservations); err != nil {
		s.logger.Warn().Err(err).Msg("audit record failed")
	}
}

// Loaded reports whether a snapshot is available.
func (s *Service) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap != nil
}

// Stats summarizes the current snapshot and selection for the sidebar.
type Stats struct {
	LastCrawledAt      string    `json:"lastCrawledAt"`
	LoadedAt           time.Time `json:"loadedAt"`
	Facilities         int       `json:"facilities"`
	Reservations       int       `json:"reservations"`
	SelectedFacilities int       `json:"selectedFacilities"`
}

func (s *Service) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Stats{SelectedFacilities: s.selection.Len(), LoadedAt: s.loadedAt}
	if s.snap != nil {
		st.LastCrawledAt = s.snap.LastCrawledAt
		st.Facilities = len(s.snap.Facilities)
		st.Reservations = len(s.snap.Reservations)
	}
	return st
}

// Districts returns the facility catalog grouped by district with
// per-facility selection flags, driving the hierarchical filter.
func (s *Service) Districts() []DistrictView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil
	}

	groups := calendar.GroupByDistrict(s.snap.Facilities)
	out := make([]DistrictView, len(groups))
	for i, g := range groups {
		dv := DistrictView{District: g.District, AllSelected: true}
		for _, f := range g.Facilities {
			selected := s.selection.Contains(f.FacilityNumber)
			if !selected {
				dv.AllSelected = false
			}
			dv.Facilities = append(dv.Facilities, SelectableFacility{
				Facility: f,
				Selected: selected,
			})
		}
		out[i] = dv
	}
	return out
}

// ToggleFacility flips one facility in the selection and rebuilds the
// index.
func (s *Service) ToggleFacility(id string) error {
	return s.updateSelection(func(sel calendar.Selection) calendar.Selection {
		return sel.Toggle(id)
	})
}

// ToggleDistrict flips every facility of the named district at once.
func (s *Service) ToggleDistrict(district string) error {
	s.mu.RLock()
	var ids []string
	if s.snap != nil {
		for _, g := range calendar.GroupByDistrict(s.snap.Facilities) {
			if g.District == district {
				ids = g.FacilityNumbers()
				break
			}
		}
	}
	s.mu.RUnlock()

	return s.updateSelection(func(sel calendar.Selection) calendar.Selection {
		return sel.ToggleDistrict(ids)
	})
}

// ToggleAll is the catalog-wide select-all toggle.
func (s *Service) ToggleAll() error {
	s.mu.RLock()
	var all []string
	if s.snap != nil {
		for _, f := range s.snap.Facilities {
			all = append(all, f.FacilityNumber)
		}
	}
	s.mu.RUnlock()

	return s.updateSelection(func(sel calendar.Selection) calendar.Selection {
		return sel.ToggleAll(all)
	})
}

// ClearSelection empties the selection, which per the engine contract
// means no facility filter is applied.
func (s *Service) ClearSelection() error {
	return s.updateSelection(func(sel calendar.Selection) calendar.Selection {
		return sel.Clear()
	})
}

func (s *Service) updateSelection(apply func(calendar.Selection) calendar.Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := apply(s.selection)
	var index calendar.DateIndex
	if s.snap != nil {
		var err error
		index, err = calendar.BuildDateIndex(s.snap.Reservations, next)
		if err != nil {
			// Snapshot dates were validated at load time; a failure here
			// means the snapshot itself is bad and must not be half-applied.
			return fmt.Errorf("rebuild index: %w", err)
		}
		metrics.IncIndexRebuild()
	}
	s.selection = next
	s.index = index
	return nil
}

// SetDateRange replaces the range filter. The index is untouched; only
// per-day in-range flags change.
func (s *Service) SetDateRange(start, end time.Time) {
	s.mu.Lock()
	s.dateRange = calendar.DateRange{Start: start, End: end}
	s.mu.Unlock()
}

// DateRange returns the current range filter.
func (s *Service) DateRange() calendar.DateRange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dateRange
}

// Current returns the snapshot and date index the views are serving.
// Both are immutable once published; a rebuild swaps in new ones.
func (s *Service) Current() (*model.Snapshot, calendar.DateIndex) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, s.index
}

// IsSelected reports the selection membership of one facility.
func (s *Service) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection.Contains(id)
}
