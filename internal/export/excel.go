// Package export renders the filtered calendar into downloadable
// formats: an Excel workbook for reporting and an iCalendar feed for
// subscription.
package export

import (
	"fmt"
	"io"
	"sort"

	"hallkal/internal/calendar"
	"hallkal/internal/model"

	"github.com/xuri/excelize/v2"
)

var excelColumns = []string{"Date", "Facility", "District", "Time Slot", "Status"}

// WriteExcel writes one sheet per district with the reservations of that
// district's facilities, date-ordered. Reservations whose facility is
// missing from the catalog are skipped: a district workbook is a
// facility-keyed view.
func WriteExcel(w io.Writer, snap *model.Snapshot, index calendar.DateIndex) error {
	file := excelize.NewFile()
	defer file.Close()

	catalog := snap.FacilityByNumber()

	headerStyle, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	firstSheet := true
	for _, district := range calendar.GroupByDistrict(snap.Facilities) {
		sheet := sheetName(district.District)
		if firstSheet {
			file.SetSheetName("Sheet1", sheet)
			firstSheet = false
		} else {
			if _, err := file.NewSheet(sheet); err != nil {
				return fmt.Errorf("create sheet %s: %w", sheet, err)
			}
		}

		if err := writeRow(file, sheet, 1, toCells(excelColumns)); err != nil {
			return err
		}
		start, _ := excelize.CoordinatesToCellName(1, 1)
		end, _ := excelize.CoordinatesToCellName(len(excelColumns), 1)
		_ = file.SetCellStyle(sheet, start, end, headerStyle)

		inDistrict := make(map[string]bool, len(district.Facilities))
		for _, f := range district.Facilities {
			inDistrict[f.FacilityNumber] = true
		}

		row := 2
		for _, dayKey := range sortedDays(index) {
			for _, r := range index.ForDay(dayKey) {
				f, ok := catalog[r.FacilityNumber]
				if !ok || !inDistrict[r.FacilityNumber] {
					continue
				}
				cells := []interface{}{dayKey, f.FacilityName, f.District, r.TimeSlot, r.Status}
				if err := writeRow(file, sheet, row, cells); err != nil {
					return err
				}
				row++
			}
		}
	}

	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(file *excelize.File, sheet string, row int, cells []interface{}) error {
	for i, v := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func toCells(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// sheetName enforces Excel's 31 character sheet name limit.
func sheetName(name string) string {
	if len(name) > 31 {
		return name[:31]
	}
	return name
}

func sortedDays(index calendar.DateIndex) []string {
	days := make([]string, 0, len(index))
	for day := range index {
		days = append(days, day)
	}
	sort.Strings(days)
	return days
}
