// Package export turns submission lists into downloadable documents:
// a CSV table and a Word report with embedded images. Both operations
// are pure over their input list.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/krcapps/orderdash/internal/domain/models"
)

// csvHeader is the fixed column set the dashboard's spreadsheet
// consumers expect.
var csvHeader = []string{"ID", "Name", "Division", "Description", "Timestamp"}

// ToCSV renders records as a CSV table, one row per record in input
// order. Embedded quotes and commas survive a round trip through any
// RFC 4180 parser.
func ToCSV(records []*models.Submission) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("export: write csv header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.ID,
			rec.UserName,
			rec.UserDivision,
			rec.Description,
			DisplayTime(rec.Timestamp),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("export: write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export: flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// DisplayTime renders a timestamp the way the dashboard shows it in
// tables: day-first date plus wall-clock time.
func DisplayTime(t time.Time) string {
	return t.Format("02/01/2006, 15.04.05")
}

// CSVFilename returns the download name for an export taken now.
func CSVFilename(now time.Time) string {
	return fmt.Sprintf("Data Order dan %s.csv", now.Format("2006-01-02"))
}

// DocFilename returns the download name for a Word export taken now.
func DocFilename(now time.Time) string {
	return fmt.Sprintf("Data Order dan %s.docx", now.Format("2006-01-02"))
}
