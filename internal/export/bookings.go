package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"shareit/internal/models"
)

const (
	sheetName  = "Bookings"
	timeLayout = "02.01.2006 15:04"
)

var headers = []string{"ID", "Item", "Booker", "Email", "Start", "End", "Status"}

// statusFill colors a booking row by status.
var statusFill = map[models.BookingStatus]string{
	models.StatusWaiting:  "#FFEB9C",
	models.StatusApproved: "#C6EFCE",
	models.StatusRejected: "#FFC7CE",
	models.StatusCanceled: "#EDEDED",
}

// WriteBookings renders bookings as an XLSX workbook into w, one row per booking in the given order.
// Bookings must carry their item and booker.
func WriteBookings(w io.Writer, title string, bookings []*models.Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", title)
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	styles := make(map[models.BookingStatus]int, len(statusFill))
	for status, color := range statusFill {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return fmt.Errorf("error creating style: %w", err)
		}
		styles[status] = style
	}

	for i, b := range bookings {
		row := i + 3
		values := []interface{}{
			b.ID,
			itemName(b),
			bookerName(b),
			bookerEmail(b),
			b.Start.Local().Format(timeLayout),
			b.End.Local().Format(timeLayout),
			string(b.Status),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
		if style, ok := styles[b.Status]; ok {
			first, _ := excelize.CoordinatesToCellName(1, row)
			last, _ := excelize.CoordinatesToCellName(len(headers), row)
			_ = f.SetCellStyle(sheetName, first, last, style)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", "D", 25)
	_ = f.SetColWidth(sheetName, "E", "F", 18)
	_ = f.SetColWidth(sheetName, "G", "G", 12)

	_ = f.DeleteSheet("Sheet1")

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

// FileName builds the download name for an owner export.
func FileName(state string, now time.Time) string {
	return fmt.Sprintf("bookings_%s_%s.xlsx", state, now.Format("2006-01-02_15-04-05"))
}

func itemName(b *models.Booking) string {
	if b.Item == nil {
		return fmt.Sprintf("#%d", b.ItemID)
	}
	return b.Item.Name
}

func bookerName(b *models.Booking) string {
	if b.Booker == nil {
		return fmt.Sprintf("#%d", b.BookerID)
	}
	return b.Booker.Name
}

func bookerEmail(b *models.Booking) string {
	if b.Booker == nil {
		return ""
	}
	return b.Booker.Email
}
