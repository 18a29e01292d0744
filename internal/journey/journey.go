// Package journey runs the attendance state machine: clock-in, visit
// reports, clock-out and the admin photo redaction.
//
// A record is active from clock-in until clock-out, then completed for good.
// Its journey only ever grows, by one event per visit and a final clock-out
// event. The single exception is RedactPhoto, which clears the photo of one
// event in place.
package journey

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/vbonduro/konsinyasi/internal/domain"
	"github.com/vbonduro/konsinyasi/internal/feed"
	"github.com/vbonduro/konsinyasi/internal/metrics"
	"github.com/vbonduro/konsinyasi/internal/photostore"
)

type attendanceRepository interface {
	Create(ctx context.Context, employee string, at time.Time) (*domain.AttendanceRecord, error)
	GetByID(ctx context.Context, id string) (*domain.AttendanceRecord, error)
	AppendEvent(ctx context.Context, id string, ev domain.JourneyEvent) error
	Complete(ctx context.Context, id string, at time.Time) error
	ReplaceJourney(ctx context.Context, id string, journey []domain.JourneyEvent) error
}

// VisitReport is what a field officer submits at a partner site.
type VisitReport struct {
	Location string
	Notes    string
	Photo    []byte
	MimeType string
}

type Manager struct {
	records  attendanceRepository
	photos   photostore.PhotoStore
	notifier feed.Notifier
	now      func() time.Time
}

func NewManager(records attendanceRepository, photos photostore.PhotoStore, notifier feed.Notifier) *Manager {
	return &Manager{
		records:  records,
		photos:   photos,
		notifier: notifier,
		now:      time.Now,
	}
}

func (m *Manager) ClockIn(ctx context.Context, employee string) (*domain.AttendanceRecord, error) {
	employee = strings.TrimSpace(employee)
	if employee == "" {
		return nil, domain.NewValidationError("employee", "employee name is required")
	}

	rec, err := m.records.Create(ctx, employee, m.now())
	if err != nil {
		return nil, err
	}

	m.changed(ctx, "clock-in")
	slog.Info("clocked in", "attendance_id", rec.ID, "employee", employee)
	return rec, nil
}

// ReportVisit stores the photo and appends a visit event to an active record.
func (m *Manager) ReportVisit(ctx context.Context, id string, report VisitReport) (*domain.AttendanceRecord, error) {
	if id == "" {
		return nil, domain.NewValidationError("attendance_id", "no active attendance")
	}
	location := strings.TrimSpace(report.Location)
	if location == "" {
		return nil, domain.NewValidationError("location", "visit location is required")
	}
	if len(report.Photo) == 0 {
		return nil, domain.NewValidationError("photo", "a photo is required")
	}

	rec, err := m.activeRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	key, err := m.photos.Save(ctx, rec.ID, report.MimeType, bytes.NewReader(report.Photo))
	if err != nil {
		return nil, fmt.Errorf("failed to save visit photo: %w", err)
	}

	ev := domain.JourneyEvent{
		Type:      domain.EventVisit,
		Timestamp: m.now(),
		Location:  location,
		Notes:     strings.TrimSpace(report.Notes),
		Photo:     key,
	}
	if err := m.records.AppendEvent(ctx, rec.ID, ev); err != nil {
		m.discardPhoto(ctx, key)
		return nil, err
	}

	m.changed(ctx, "visit")
	slog.Info("visit reported", "attendance_id", rec.ID, "location", location)
	return m.records.GetByID(ctx, rec.ID)
}

// ClockOut completes an active record. A completed record is left as is
// and ErrNotActive is returned.
func (m *Manager) ClockOut(ctx context.Context, id string) (*domain.AttendanceRecord, error) {
	if id == "" {
		return nil, domain.NewValidationError("attendance_id", "no active attendance")
	}

	if err := m.records.Complete(ctx, id, m.now()); err != nil {
		return nil, err
	}

	m.changed(ctx, "clock-out")
	slog.Info("clocked out", "attendance_id", id)
	return m.records.GetByID(ctx, id)
}

// RedactPhoto clears the photo of the journey event at index. The journey
// is read, modified and written back whole without a version check, so of
// two concurrent redactions on one record the last write wins.
func (m *Manager) RedactPhoto(ctx context.Context, id string, index int) error {
	rec, err := m.record(ctx, id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(rec.Journey) {
		return fmt.Errorf("journey event %d: %w", index, domain.ErrNotFound)
	}

	key := rec.Journey[index].Photo
	if key == "" {
		return nil
	}

	journey := make([]domain.JourneyEvent, len(rec.Journey))
	copy(journey, rec.Journey)
	journey[index].Photo = ""

	if err := m.records.ReplaceJourney(ctx, id, journey); err != nil {
		return err
	}

	m.discardPhoto(ctx, key)
	m.changed(ctx, "redact")
	slog.Info("photo redacted", "attendance_id", id, "index", index)
	return nil
}

// Photo opens the photo attached to the journey event at index.
func (m *Manager) Photo(ctx context.Context, id string, index int) (io.ReadCloser, string, error) {
	rec, err := m.record(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if index < 0 || index >= len(rec.Journey) || rec.Journey[index].Photo == "" {
		return nil, "", fmt.Errorf("photo of journey event %d: %w", index, domain.ErrNotFound)
	}
	return m.photos.Get(ctx, rec.Journey[index].Photo)
}

func (m *Manager) record(ctx context.Context, id string) (*domain.AttendanceRecord, error) {
	rec, err := m.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

func (m *Manager) activeRecord(ctx context.Context, id string) (*domain.AttendanceRecord, error) {
	rec, err := m.record(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rec.Active() {
		return nil, domain.ErrNotActive
	}
	return rec, nil
}

func (m *Manager) discardPhoto(ctx context.Context, key string) {
	if err := m.photos.Delete(ctx, key); err != nil {
		slog.Warn("failed to delete photo", "key", key, "error", err)
	}
}

func (m *Manager) changed(ctx context.Context, op string) {
	metrics.WritesTotal.WithLabelValues(string(domain.CollectionAttendance), op).Inc()
	m.notifier.Notify(ctx, domain.CollectionAttendance)
}
