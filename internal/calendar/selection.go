// Package calendar implements the pure transformations behind the
// reservation calendar: the day-keyed reservation index, facility and
// district groupings, status aggregates, the date-range filter and the
// facility selection set. Every function takes immutable inputs and
// returns freshly allocated output, so views can be rebuilt from the
// snapshot on any change without synchronization.
package calendar

// Selection is the set of facility numbers currently included in the
// derived views. The zero value is an empty selection, which means "no
// facility filter applied" rather than "hide everything". All mutating
// operations return a new Selection and leave the receiver untouched.
type Selection struct {
	ids map[string]struct{}
}

// NewSelection builds a selection from a caller-supplied id list.
// Duplicates collapse; order is irrelevant.
func NewSelection(ids ...string) Selection {
	s := Selection{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Contains reports membership of one facility id.
func (s Selection) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected facilities.
func (s Selection) Len() int { return len(s.ids) }

// IsEmpty reports whether no facility is selected.
func (s Selection) IsEmpty() bool { return len(s.ids) == 0 }

// IDs returns the selected ids in unspecified order.
func (s Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	return out
}

// Toggle flips membership of a single facility id.
func (s Selection) Toggle(id string) Selection {
	next := s.clone(1)
	if _, ok := next.ids[id]; ok {
		delete(next.ids, id)
	} else {
		next.ids[id] = struct{}{}
	}
	return next
}

// ToggleDistrict flips a whole district given the full id list belonging
// to it: if every id is already selected the district is removed,
// otherwise the selection becomes the union with the district.
func (s Selection) ToggleDistrict(districtIDs []string) Selection {
	allSelected := true
	for _, id := range districtIDs {
		if !s.Contains(id) {
			allSelected = false
			break
		}
	}

	next := s.clone(len(districtIDs))
	for _, id := range districtIDs {
		if allSelected {
			delete(next.ids, id)
		} else {
			next.ids[id] = struct{}{}
		}
	}
	return next
}

// ToggleAll is the select-all toggle: if the selection already covers the
// full catalog it clears, otherwise it selects every id in allIDs.
func (s Selection) ToggleAll(allIDs []string) Selection {
	if len(s.ids) == len(allIDs) && len(allIDs) > 0 {
		return NewSelection()
	}
	return NewSelection(allIDs...)
}

// Clear returns an empty selection.
func (s Selection) Clear() Selection { return NewSelection() }

func (s Selection) clone(extra int) Selection {
	next := Selection{ids: make(map[string]struct{}, len(s.ids)+extra)}
	for id := range s.ids {
		next.ids[id] = struct{}{}
	}
	return next
}
