// Package export renders history as spreadsheet-friendly CSV.
//
// Output starts with a UTF-8 byte order mark, separates lines with "\n" and
// wraps every data field in double quotes, doubling any embedded quote.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/vbonduro/konsinyasi/internal/domain"
	"github.com/vbonduro/konsinyasi/internal/timeutil"
)

// ErrNoRows is returned when there is nothing to export. Nothing is written.
var ErrNoRows = errors.New("no rows to export")

const bom = "\ufeff"

const NoVisitMarker = "Tidak ada kunjungan"

var (
	transactionHeader = []string{"Date", "Product", "Partner", "Quantity", "Officer"}
	canvasingHeader   = []string{"Attendance Date", "Employee", "Visit Time", "Visit Location", "Notes"}
)

type table struct {
	buf bytes.Buffer
}

func newTable(header []string) *table {
	t := &table{}
	t.buf.WriteString(bom)
	t.buf.WriteString(strings.Join(header, ","))
	return t
}

func (t *table) row(fields ...string) {
	t.buf.WriteByte('\n')
	for i, f := range fields {
		if i > 0 {
			t.buf.WriteByte(',')
		}
		t.buf.WriteByte('"')
		t.buf.WriteString(strings.ReplaceAll(f, `"`, `""`))
		t.buf.WriteByte('"')
	}
}

func (t *table) flush(w io.Writer) error {
	if _, err := t.buf.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// Transactions writes one row per drop-off or return.
func Transactions(w io.Writer, txns []domain.Transaction, loc *time.Location) error {
	if len(txns) == 0 {
		return ErrNoRows
	}

	t := newTable(transactionHeader)
	for _, tx := range txns {
		date := ""
		if tx.Timestamp != nil {
			date = timeutil.Format(*tx.Timestamp, loc, timeutil.DisplayDateTime)
		}
		t.row(date, tx.ProductName, tx.PartnerName, strconv.Itoa(tx.Quantity), tx.OfficerName)
	}
	return t.flush(w)
}

// Canvasing writes one row per visit, repeating the attendance date and
// employee. A record without visits still gets a single placeholder row.
func Canvasing(w io.Writer, records []domain.AttendanceRecord, loc *time.Location) error {
	if len(records) == 0 {
		return ErrNoRows
	}

	t := newTable(canvasingHeader)
	for _, rec := range records {
		date := ""
		if !rec.ClockInTime.IsZero() {
			date = timeutil.Format(rec.ClockInTime, loc, timeutil.DisplayDate)
		}

		visits := rec.Visits()
		if len(visits) == 0 {
			t.row(date, rec.EmployeeName, "-", "-", NoVisitMarker)
			continue
		}
		for _, v := range visits {
			at := ""
			if !v.Timestamp.IsZero() {
				at = timeutil.Format(v.Timestamp, loc, timeutil.DisplayTime)
			}
			t.row(date, rec.EmployeeName, at, v.Location, v.Notes)
		}
	}
	return t.flush(w)
}

// Filename names an export of kind ("dropping", "return", "canvasing")
// produced on the calendar day of now in loc.
func Filename(kind string, now time.Time, loc *time.Location) string {
	return fmt.Sprintf("laporan_%s_%s.csv", kind, timeutil.Format(now, loc, timeutil.DateLayout))
}
