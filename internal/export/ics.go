package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"hallkal/internal/calendar"
	"hallkal/internal/model"
)

const icsProductID = "-//hallkal//reservation-calendar//EN"

// WriteICS writes the filtered calendar as an iCalendar feed: one
// all-day event per facility per reservation day, carrying the slot
// codes and the display-priority status. Dangling facility references
// are skipped for the same reason as in the Excel export.
func WriteICS(w io.Writer, calName string, snap *model.Snapshot, index calendar.DateIndex) error {
	catalog := snap.FacilityByNumber()
	now := time.Now().UTC().Format("20060102T150405Z")

	fmt.Fprintln(w, "BEGIN:VCALENDAR")
	fmt.Fprintln(w, "VERSION:2.0")
	fmt.Fprintf(w, "PRODID:%s\n", icsProductID)
	fmt.Fprintf(w, "X-WR-CALNAME:%s\n", calName)
	fmt.Fprintln(w, "CALSCALE:GREGORIAN")

	for _, dayKey := range sortedDays(index) {
		day, err := time.Parse(model.DateFormat, dayKey)
		if err != nil {
			continue
		}
		for _, group := range calendar.GroupByFacility(index.ForDay(dayKey)) {
			f, ok := catalog[group.FacilityNumber]
			if !ok {
				continue
			}

			slots := make([]string, len(group.Reservations))
			for i, r := range group.Reservations {
				slots[i] = r.TimeSlot
			}
			status := calendar.DominantStatus(group.Reservations)

			fmt.Fprintln(w, "BEGIN:VEVENT")
			fmt.Fprintf(w, "UID:%s-%s@hallkal\n", dayKey, group.FacilityNumber)
			fmt.Fprintf(w, "DTSTAMP:%s\n", now)
			fmt.Fprintf(w, "DTSTART;VALUE=DATE:%s\n", day.Format("20060102"))
			fmt.Fprintf(w, "DTEND;VALUE=DATE:%s\n", day.AddDate(0, 0, 1).Format("20060102"))
			fmt.Fprintf(w, "SUMMARY:%s (%s)\n", escapeICS(f.FacilityName), status)
			fmt.Fprintf(w, "DESCRIPTION:Slots %s in %s\n",
				escapeICS(strings.Join(slots, ", ")), escapeICS(f.District))
			fmt.Fprintf(w, "LOCATION:%s\n", escapeICS(f.District))
			fmt.Fprintln(w, "END:VEVENT")
		}
	}

	fmt.Fprintln(w, "END:VCALENDAR")
	return nil
}

// escapeICS escapes the characters RFC 5545 treats specially in text values.
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ";", `\;`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}
