package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/konsinyasi/internal/domain"
)

func visit(location, photo string, ts time.Time) domain.JourneyEvent {
	return domain.JourneyEvent{Type: domain.EventVisit, Location: location, Notes: "catatan", Photo: photo, Timestamp: ts}
}

func TestAttendanceStoreCreate(t *testing.T) {
	store := NewAttendanceStore(newTestDB(t))
	ctx := context.Background()
	clockIn := time.Date(2024, 5, 1, 1, 0, 0, 0, time.UTC)

	rec, err := store.Create(ctx, "Gigih", clockIn)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, domain.StatusActive, rec.Status)

	got, err := store.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Gigih", got.EmployeeName)
	assert.True(t, got.Active())
	assert.Nil(t, got.ClockOutTime)
	assert.WithinDuration(t, clockIn, got.ClockInTime, time.Millisecond)
	require.Len(t, got.Journey, 1)
	assert.Equal(t, domain.EventClockIn, got.Journey[0].Type)
}

func TestAttendanceStoreGetByIDMissing(t *testing.T) {
	store := NewAttendanceStore(newTestDB(t))

	got, err := store.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAttendanceStoreFullJourney(t *testing.T) {
	store := NewAttendanceStore(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 1, 0, 0, 0, time.UTC)

	rec, err := store.Create(ctx, "Fajar", base)
	require.NoError(t, err)

	locations := []string{"RSI", "KEMENAG", "DIMSUM"}
	for i, loc := range locations {
		ts := base.Add(time.Duration(i+1) * time.Hour)
		require.NoError(t, store.AppendEvent(ctx, rec.ID, visit(loc, "photo-"+loc, ts)))
	}
	require.NoError(t, store.Complete(ctx, rec.ID, base.Add(8*time.Hour)))

	got, err := store.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	require.Len(t, got.Journey, len(locations)+2)
	assert.Equal(t, domain.EventClockIn, got.Journey[0].Type)
	for i, loc := range locations {
		ev := got.Journey[i+1]
		assert.Equal(t, domain.EventVisit, ev.Type)
		assert.Equal(t, loc, ev.Location)
		assert.Equal(t, "photo-"+loc, ev.Photo)
	}
	assert.Equal(t, domain.EventClockOut, got.Journey[len(got.Journey)-1].Type)

	assert.Equal(t, domain.StatusCompleted, got.Status)
	require.NotNil(t, got.ClockOutTime)
	assert.WithinDuration(t, base.Add(8*time.Hour), *got.ClockOutTime, time.Millisecond)
}

func TestAttendanceStoreAppendRequiresActive(t *testing.T) {
	store := NewAttendanceStore(newTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	assert.ErrorIs(t, store.AppendEvent(ctx, "missing", visit("RSI", "", now)), domain.ErrNotFound)

	rec, err := store.Create(ctx, "Ade", now)
	require.NoError(t, err)
	require.NoError(t, store.Complete(ctx, rec.ID, now))

	assert.ErrorIs(t, store.AppendEvent(ctx, rec.ID, visit("RSI", "", now)), domain.ErrNotActive)
}

func TestAttendanceStoreCompleteTwice(t *testing.T) {
	store := NewAttendanceStore(newTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	rec, err := store.Create(ctx, "Ade", now)
	require.NoError(t, err)

	require.NoError(t, store.Complete(ctx, rec.ID, now))
	assert.ErrorIs(t, store.Complete(ctx, rec.ID, now), domain.ErrNotActive)
	assert.ErrorIs(t, store.Complete(ctx, "missing", now), domain.ErrNotFound)

	got, err := store.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Len(t, got.Journey, 2)
}

func TestAttendanceStoreConcurrentAppends(t *testing.T) {
	store := NewAttendanceStore(newTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	rec, err := store.Create(ctx, "Pandu", now)
	require.NoError(t, err)

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.AppendEvent(ctx, rec.ID, visit("BTN PURWOKERTO", "", now))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := store.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Len(t, got.Journey, n+1)
}

func TestAttendanceStoreReplaceJourney(t *testing.T) {
	store := NewAttendanceStore(newTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	rec, err := store.Create(ctx, "Gigih", now)
	require.NoError(t, err)
	require.NoError(t, store.AppendEvent(ctx, rec.ID, visit("RSI", "a.jpg", now)))
	require.NoError(t, store.AppendEvent(ctx, rec.ID, visit("RSDK", "b.jpg", now)))

	got, err := store.GetByID(ctx, rec.ID)
	require.NoError(t, err)

	journey := got.Journey
	journey[1].Photo = ""
	require.NoError(t, store.ReplaceJourney(ctx, rec.ID, journey))

	got, err = store.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, got.Journey, 3)
	assert.Empty(t, got.Journey[1].Photo)
	assert.Equal(t, "RSI", got.Journey[1].Location)
	assert.Equal(t, "b.jpg", got.Journey[2].Photo)

	assert.ErrorIs(t, store.ReplaceJourney(ctx, "missing", journey), domain.ErrNotFound)
}

func TestAttendanceStoreListNewestFirst(t *testing.T) {
	store := NewAttendanceStore(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 1, 0, 0, 0, time.UTC)

	older, err := store.Create(ctx, "Gigih", base)
	require.NoError(t, err)
	newer, err := store.Create(ctx, "Fajar", base.Add(24*time.Hour))
	require.NoError(t, err)
	require.NoError(t, store.AppendEvent(ctx, older.ID, visit("RSI", "", base)))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Len(t, list[0].Journey, 1)
	assert.Equal(t, older.ID, list[1].ID)
	assert.Len(t, list[1].Journey, 2)
}
