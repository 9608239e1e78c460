package shift

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/profile"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockIn_AtReferencePoint(t *testing.T) {
	f := newFixture(t)
	ctx := authedContext(t, "worker-1")

	resp, err := f.svc.ClockIn(ctx, at(52.3676, 4.9041))
	require.NoError(t, err)

	assert.Equal(t, "worker-1", resp.UserID)
	assert.Nil(t, resp.ClockOut)
	assert.Nil(t, resp.DurationMinutes)
	assert.True(t, resp.IsActive)
	assert.Equal(t, "gps", resp.EntryMethod)
	assert.Equal(t, "2026-03-02T09:00:00Z", resp.ClockIn)
	require.NotNil(t, resp.ClockInLatitude)
	assert.Equal(t, 52.3676, *resp.ClockInLatitude)
	assert.True(t, validator.IsValidUUID(resp.ID))

	assert.Equal(t, 1, f.openShifts(t, "worker-1"))
	assert.Equal(t, []shift.ChangeAction{shift.ChangeClockIn}, f.publisher.actions())
}

func TestClockIn_SecondClockInRejected(t *testing.T) {
	f := newFixture(t)
	ctx := authedContext(t, "worker-1")

	_, err := f.svc.ClockIn(ctx, at(52.3676, 4.9041))
	require.NoError(t, err)

	_, err = f.svc.ClockIn(ctx, at(52.3676, 4.9041))
	assert.ErrorIs(t, err, shift.ErrActiveShiftExists)
	assert.Equal(t, 1, f.openShifts(t, "worker-1"))
}

func TestClockIn_OutsideGeofence(t *testing.T) {
	f := newFixture(t)
	ctx := authedContext(t, "worker-1")

	_, err := f.svc.ClockIn(ctx, at(52.3700, 4.9100))
	require.ErrorIs(t, err, shift.ErrOutsideGeofence)

	var geoErr *shift.GeofenceError
	require.ErrorAs(t, err, &geoErr)
	assert.InDelta(t, 481.33, geoErr.DistanceMeters, 1)
	assert.Equal(t, 50.0, geoErr.RadiusMeters)

	assert.Equal(t, 0, f.openShifts(t, "worker-1"))
	assert.Empty(t, f.publisher.actions())
}

func TestClockIn_Rejections(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ClockIn(context.Background(), at(52.3676, 4.9041))
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)

	_, err = f.svc.ClockIn(authedContext(t, "worker-1"), at(120, 4.9041))
	var vErrs validator.ValidationErrors
	assert.ErrorAs(t, err, &vErrs)

	f.profiles.Put(profile.Profile{ID: "banned-1", FullName: "Ban Ned", Role: profile.RoleWorker, IsBanned: true})
	_, err = f.svc.ClockIn(authedContext(t, "banned-1"), at(52.3676, 4.9041))
	assert.ErrorIs(t, err, profile.ErrProfileBanned)

	// no profile row yet is allowed
	_, err = f.svc.ClockIn(authedContext(t, "new-hire"), at(52.3676, 4.9041))
	assert.NoError(t, err)
}

type countingLocations struct {
	location.LocationRepository
	gets int
}

func (c *countingLocations) Get(ctx context.Context) (*location.RestaurantLocation, error) {
	c.gets++
	return c.LocationRepository.Get(ctx)
}

func TestClockIn_MissingCoordinatesRejectedBeforeStorage(t *testing.T) {
	f := newFixture(t)

	// a restaurant at (0,0) would accept a zero-valued position
	locations := &countingLocations{LocationRepository: memory.NewLocationRepository()}
	_, err := locations.LocationRepository.Upsert(context.Background(), location.RestaurantLocation{
		ID: "0195a0f2-0000-7000-8000-000000000002", Name: "Null Island", RadiusMeters: 50,
	})
	require.NoError(t, err)
	svc := NewShiftService(f.shifts, locations, f.profiles, nil)

	lat := 0.0
	requests := []shift.ClockInRequest{
		{},
		{Latitude: &lat},
		{Longitude: &lat},
	}
	for _, req := range requests {
		_, err := svc.ClockIn(authedContext(t, "worker-1"), req)
		var vErrs validator.ValidationErrors
		require.ErrorAs(t, err, &vErrs)
	}

	_, err = svc.ClockIn(authedContext(t, "worker-1"), shift.ClockInRequest{})
	var vErrs validator.ValidationErrors
	require.ErrorAs(t, err, &vErrs)
	assert.Equal(t, "latitude is required", vErrs.ToMap()["latitude"])
	assert.Equal(t, "longitude is required", vErrs.ToMap()["longitude"])

	assert.Zero(t, locations.gets)
	assert.Zero(t, f.openShifts(t, "worker-1"))
}

func TestClockIn_LocationNotConfigured(t *testing.T) {
	f := newFixture(t)
	svc := NewShiftService(f.shifts, memory.NewLocationRepository(), f.profiles, nil)

	_, err := svc.ClockIn(authedContext(t, "worker-1"), at(52.3676, 4.9041))
	assert.ErrorIs(t, err, location.ErrLocationNotConfigured)
}

func TestClockIn_ConcurrentAttemptsLeaveOneOpenShift(t *testing.T) {
	f := newFixture(t)
	ctx := authedContext(t, "worker-1")

	const attempts = 25
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.ClockIn(ctx, at(52.3676, 4.9041))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, shift.ErrActiveShiftExists)
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, f.openShifts(t, "worker-1"))
}

func TestClockOut_RoundsDuration(t *testing.T) {
	f := newFixture(t)
	ctx := authedContext(t, "worker-1")

	_, err := f.svc.ClockIn(ctx, at(52.3676, 4.9041))
	require.NoError(t, err)

	f.clock.Advance(90 * time.Second)

	resp, err := f.svc.ClockOut(ctx)
	require.NoError(t, err)
	require.NotNil(t, resp.DurationMinutes)
	assert.Equal(t, 2, *resp.DurationMinutes)
	require.NotNil(t, resp.ClockOut)
	assert.Equal(t, "2026-03-02T09:01:30Z", *resp.ClockOut)
	assert.False(t, resp.IsActive)

	assert.Equal(t, []shift.ChangeAction{shift.ChangeClockIn, shift.ChangeClockOut}, f.publisher.actions())
}

func TestClockOut_WithoutOpenShift(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ClockOut(authedContext(t, "worker-1"))
	assert.ErrorIs(t, err, shift.ErrNoActiveShift)

	all, err := f.shifts.List(context.Background(), shift.ShiftRange{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGetActiveShiftAndHistory(t *testing.T) {
	f := newFixture(t)
	ctx := authedContext(t, "worker-1")

	active, err := f.svc.GetActiveShift(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)

	for i := 0; i < 3; i++ {
		_, err := f.svc.ClockIn(ctx, at(52.3676, 4.9041))
		require.NoError(t, err)
		f.clock.Advance(time.Hour)
		_, err = f.svc.ClockOut(ctx)
		require.NoError(t, err)
		f.clock.Advance(time.Hour)
	}
	opened, err := f.svc.ClockIn(ctx, at(52.3676, 4.9041))
	require.NoError(t, err)

	active, err = f.svc.GetActiveShift(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, opened.ID, active.ID)

	history, err := f.svc.GetShiftHistory(ctx, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, opened.ID, history[0].ID, "newest first")

	history, err = f.svc.GetShiftHistory(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, history, 4)

	other, err := f.svc.GetShiftHistory(authedContext(t, "admin-1"), 10)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestClampHistoryLimit(t *testing.T) {
	assert.Equal(t, DefaultHistoryLimit, clampHistoryLimit(0))
	assert.Equal(t, DefaultHistoryLimit, clampHistoryLimit(-5))
	assert.Equal(t, 25, clampHistoryLimit(25))
	assert.Equal(t, MaxHistoryLimit, clampHistoryLimit(1000))
}
