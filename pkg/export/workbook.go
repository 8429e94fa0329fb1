// Package export renders a projected roster as an xlsx workbook.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/arnavshah/shift-roster-go/pkg/roster"
	"github.com/arnavshah/shift-roster-go/pkg/scheduler"
)

// SheetName is the single sheet of the workbook.
const SheetName = "シフト表"

// ContentType is the MIME type of the rendered workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var weekdays = [7]string{"日", "月", "火", "水", "木", "金", "土"}

// Cell fill colors by label.
var fills = map[string]string{
	roster.Early.Label():  "FFF3CD",
	roster.Middle.Label(): "D1ECF1",
	roster.Late.Label():   "F8D7DA",
	roster.Off.Label():    "D4EDDA",
}

// Filename is the download name for a month's roster.
func Filename(year, month int) string {
	return fmt.Sprintf("シフト表_%d年%d月.xlsx", year, month)
}

// DayHeader is the column header of a day, e.g. "4/1\n火曜".
func DayHeader(date time.Time) string {
	return fmt.Sprintf("%d/%d\n%s曜", int(date.Month()), date.Day(), weekdays[date.Weekday()])
}

type styles struct {
	header   int
	sunday   int
	saturday int
	cell     int
	byLabel  map[string]int
}

func newStyles(f *excelize.File) (*styles, error) {
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	wrapped := &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true}
	solid := func(color string) excelize.Fill {
		return excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}
	}

	var s styles
	var err error
	if s.header, err = f.NewStyle(&excelize.Style{Alignment: wrapped}); err != nil {
		return nil, err
	}
	if s.sunday, err = f.NewStyle(&excelize.Style{
		Alignment: wrapped,
		Fill:      solid("FFCCCC"),
		Font:      &excelize.Font{Bold: true, Color: "CC0000"},
	}); err != nil {
		return nil, err
	}
	if s.saturday, err = f.NewStyle(&excelize.Style{
		Alignment: wrapped,
		Fill:      solid("CCE5FF"),
		Font:      &excelize.Font{Bold: true, Color: "0066CC"},
	}); err != nil {
		return nil, err
	}
	if s.cell, err = f.NewStyle(&excelize.Style{Alignment: center}); err != nil {
		return nil, err
	}
	s.byLabel = make(map[string]int, len(fills))
	for label, color := range fills {
		id, err := f.NewStyle(&excelize.Style{Alignment: center, Fill: solid(color)})
		if err != nil {
			return nil, err
		}
		s.byLabel[label] = id
	}
	return &s, nil
}

func (s *styles) forLabel(label string) int {
	if strings.HasPrefix(label, roster.Off.Label()) {
		return s.byLabel[roster.Off.Label()]
	}
	if id, ok := s.byLabel[label]; ok {
		return id
	}
	return s.cell
}

// Workbook renders rows for the given month. Every row must hold numDays
// labels.
func Workbook(year, month, numDays int, rows []scheduler.Row) (*excelize.File, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month %d out of range", month)
	}
	cal := roster.Calendar{Year: year, Month: month}
	if numDays <= 0 || numDays > cal.NumDays() {
		return nil, fmt.Errorf("num_days %d does not fit %d-%02d", numDays, year, month)
	}
	for _, r := range rows {
		if len(r.Shifts) < numDays {
			return nil, fmt.Errorf("staff %q has %d shifts, need %d", r.Name, len(r.Shifts), numDays)
		}
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, err
	}
	if err := fill(f, cal, numDays, rows); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return f, nil
}

func fill(f *excelize.File, cal roster.Calendar, numDays int, rows []scheduler.Row) error {
	st, err := newStyles(f)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(SheetName, "A1", "スタッフ名"); err != nil {
		return err
	}

	for day := 1; day <= numDays; day++ {
		cell, err := excelize.CoordinatesToCellName(day+1, 1)
		if err != nil {
			return err
		}
		date := cal.Date(day)
		if err := f.SetCellValue(SheetName, cell, DayHeader(date)); err != nil {
			return err
		}
		style := st.header
		switch date.Weekday() {
		case time.Sunday:
			style = st.sunday
		case time.Saturday:
			style = st.saturday
		}
		if err := f.SetCellStyle(SheetName, cell, cell, style); err != nil {
			return err
		}
	}

	for i, r := range rows {
		row := i + 2
		nameCell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, nameCell, r.Name); err != nil {
			return err
		}
		for day := 1; day <= numDays; day++ {
			cell, err := excelize.CoordinatesToCellName(day+1, row)
			if err != nil {
				return err
			}
			label := r.Shifts[day-1]
			if err := f.SetCellValue(SheetName, cell, label); err != nil {
				return err
			}
			if err := f.SetCellStyle(SheetName, cell, cell, st.forLabel(label)); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 15); err != nil {
		return err
	}
	last, err := excelize.ColumnNumberToName(numDays + 1)
	if err != nil {
		return err
	}
	return f.SetColWidth(SheetName, "B", last, 12)
}
