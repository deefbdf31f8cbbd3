package model

// Status is the booking state of a reservation. The wire value is an open
// string; anything outside the known set is kept as StatusUnknown with the
// raw value preserved for display.
type Status struct {
	kind statusKind
	raw  string
}

type statusKind int

const (
	statusConfirmed statusKind = iota
	statusAvailable
	statusPending
	statusUnknown
)

var (
	StatusConfirmed = Status{kind: statusConfirmed, raw: "confirmed"}
	StatusAvailable = Status{kind: statusAvailable, raw: "available"}
	StatusPending   = Status{kind: statusPending, raw: "pending"}
)

// ParseStatus maps a wire status string to its variant.
func ParseStatus(raw string) Status {
	switch raw {
	case "confirmed":
		return StatusConfirmed
	case "available":
		return StatusAvailable
	case "pending":
		return StatusPending
	default:
		return Status{kind: statusUnknown, raw: raw}
	}
}

func (s Status) IsConfirmed() bool { return s.kind == statusConfirmed }
func (s Status) IsAvailable() bool { return s.kind == statusAvailable }
func (s Status) IsPending() bool   { return s.kind == statusPending }
func (s Status) IsUnknown() bool   { return s.kind == statusUnknown }

// String returns the raw wire value, also for unknown statuses.
func (s Status) String() string { return s.raw }

// TimeSlot is a coded sub-division of a day. The crawler emits two code
// pairs for the same two windows (L/A = first, D/B = second); unknown
// codes keep their raw value and sort after the recognized ones.
type TimeSlot struct {
	precedence int
	raw        string
}

const (
	slotFirst   = 0
	slotSecond  = 1
	slotUnknown = 2
)

// ParseTimeSlot maps a wire slot code to its variant.
func ParseTimeSlot(raw string) TimeSlot {
	switch raw {
	case "L", "A":
		return TimeSlot{precedence: slotFirst, raw: raw}
	case "D", "B":
		return TimeSlot{precedence: slotSecond, raw: raw}
	default:
		return TimeSlot{precedence: slotUnknown, raw: raw}
	}
}

// Precedence is the sort key for slot ordering: first window, second
// window, then everything unrecognized in original order.
func (t TimeSlot) Precedence() int { return t.precedence }

func (t TimeSlot) IsFirst() bool  { return t.precedence == slotFirst }
func (t TimeSlot) IsSecond() bool { return t.precedence == slotSecond }

// String returns the raw wire code.
func (t TimeSlot) String() string { return t.raw }
