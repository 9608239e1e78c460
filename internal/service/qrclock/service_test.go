package qrclock

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/profile"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/qrclock"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/utils"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/repository/memory"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validQR = `{"type":"restaurant_clock"}`

var (
	testTokenAuth = jwtauth.New("HS256", []byte("test-secret"), nil)
	t0            = time.Date(2026, 3, 2, 8, 5, 0, 0, time.UTC)
)

func authedContext(t *testing.T, userID string) context.Context {
	t.Helper()
	token, _, err := testTokenAuth.Encode(map[string]interface{}{"user_id": userID, "type": "access"})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

type fixture struct {
	shifts    *memory.ShiftRepository
	locations *memory.LocationRepository
	svc       *QRClockServiceImpl
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	amsterdam, err := time.LoadLocation("Europe/Amsterdam")
	if err != nil {
		t.Skip("tzdata not available")
	}

	profiles := memory.NewProfileRepository()
	require.NoError(t, profiles.Seed([]string{"worker-1:Wim Bakker:worker"}))
	profiles.Put(profile.Profile{ID: "banned-1", Role: profile.RoleWorker, IsBanned: true})

	f := &fixture{
		shifts:    memory.NewShiftRepository(),
		locations: memory.NewLocationRepository(),
		now:       t0,
	}
	f.svc = NewQRClockService(f.shifts, f.locations, profiles, nil, amsterdam).(*QRClockServiceImpl)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func TestQRClock_ClockInThenOut(t *testing.T) {
	f := newFixture(t)
	ctx := authedContext(t, "worker-1")

	in, err := f.svc.Clock(ctx, qrclock.ClockRequest{UserID: "worker-1", QRData: validQR})
	require.NoError(t, err)
	assert.True(t, in.Success)
	assert.Equal(t, qrclock.ActionClockIn, in.Action)
	assert.Equal(t, "Clocked in at 09:05.", in.Message, "formatted in restaurant time")
	require.NotNil(t, in.Shift)
	assert.Equal(t, "qr", in.Shift.EntryMethod)
	assert.Nil(t, in.Shift.ClockInLatitude)

	f.now = t0.Add(8*time.Hour + 15*time.Minute + 20*time.Second)

	out, err := f.svc.Clock(ctx, qrclock.ClockRequest{UserID: "worker-1", QRData: validQR, HasActiveShift: true})
	require.NoError(t, err)
	assert.Equal(t, qrclock.ActionClockOut, out.Action)
	assert.Equal(t, "Clocked out. You worked 8h 15m.", out.Message)
	assert.Equal(t, 495, *out.Shift.DurationMinutes)
}

func TestQRClock_ClockInWhileShiftAlreadyOpen(t *testing.T) {
	f := newFixture(t)
	ctx := authedContext(t, "worker-1")

	// opened through the GPS path moments earlier
	lat, lng := 52.3676, 4.9041
	_, err := f.shifts.Create(context.Background(), shift.Shift{
		ID: "gps-shift", UserID: "worker-1", ClockIn: t0, ClockInLatitude: &lat, ClockInLongitude: &lng,
		EntryMethod: shift.EntryMethodGPS,
	})
	require.NoError(t, err)

	_, err = f.svc.Clock(ctx, qrclock.ClockRequest{UserID: "worker-1", QRData: validQR, HasActiveShift: false})
	assert.ErrorIs(t, err, shift.ErrActiveShiftExists)

	open, err := f.shifts.ListOpen(context.Background())
	require.NoError(t, err)
	assert.Len(t, open, 1)
	assert.Equal(t, "gps-shift", open[0].ID)
}

func TestQRClock_ClockOutWithoutOpenShift(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Clock(authedContext(t, "worker-1"), qrclock.ClockRequest{UserID: "worker-1", QRData: validQR, HasActiveShift: true})
	assert.ErrorIs(t, err, shift.ErrNoActiveShift)
}

func TestQRClock_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := authedContext(t, "worker-1")

	cases := []struct {
		name string
		ctx  context.Context
		req  qrclock.ClockRequest
		want error
	}{
		{"missing user", ctx, qrclock.ClockRequest{QRData: validQR}, qrclock.ErrMissingFields},
		{"missing qr", ctx, qrclock.ClockRequest{UserID: "worker-1"}, qrclock.ErrMissingFields},
		{"malformed qr", ctx, qrclock.ClockRequest{UserID: "worker-1", QRData: "https://example.com"}, location.ErrMalformedQRData},
		{"wrong type", ctx, qrclock.ClockRequest{UserID: "worker-1", QRData: `{"type":"menu"}`}, location.ErrInvalidQRType},
		{"unauthenticated", context.Background(), qrclock.ClockRequest{UserID: "worker-1", QRData: validQR}, auth.ErrNotAuthenticated},
		{"someone else", ctx, qrclock.ClockRequest{UserID: "worker-2", QRData: validQR}, qrclock.ErrIdentityMismatch},
		{"no profile", authedContext(t, "ghost"), qrclock.ClockRequest{UserID: "ghost", QRData: validQR}, qrclock.ErrProfileNotFound},
		{"banned", authedContext(t, "banned-1"), qrclock.ClockRequest{UserID: "banned-1", QRData: validQR}, profile.ErrProfileBanned},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := f.svc.Clock(c.ctx, c.req)
			assert.ErrorIs(t, err, c.want)
		})
	}

	all, err := f.shifts.List(context.Background(), shift.ShiftRange{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestQRClock_RotatingCode(t *testing.T) {
	f := newFixture(t)
	ctx := authedContext(t, "worker-1")

	secret, err := utils.GenerateTOTPSecret("Timeclock", "De Pijp")
	require.NoError(t, err)
	_, err = f.locations.Upsert(context.Background(), location.RestaurantLocation{
		ID: "loc", Name: "De Pijp", Latitude: 52.3676, Longitude: 4.9041, RadiusMeters: 50, QRSecret: &secret,
	})
	require.NoError(t, err)

	_, err = f.svc.Clock(ctx, qrclock.ClockRequest{UserID: "worker-1", QRData: validQR})
	assert.ErrorIs(t, err, qrclock.ErrInvalidQRCode, "static code no longer accepted")

	stale, err := utils.GenerateTOTPCode(secret, t0.Add(-10*time.Minute))
	require.NoError(t, err)
	payload, err := location.QRPayload{Type: location.QRTypeRestaurantClock, Code: stale}.Encode()
	require.NoError(t, err)
	_, err = f.svc.Clock(ctx, qrclock.ClockRequest{UserID: "worker-1", QRData: payload})
	assert.ErrorIs(t, err, qrclock.ErrInvalidQRCode)

	current, err := utils.GenerateTOTPCode(secret, t0)
	require.NoError(t, err)
	payload, err = location.QRPayload{Type: location.QRTypeRestaurantClock, Code: current}.Encode()
	require.NoError(t, err)
	resp, err := f.svc.Clock(ctx, qrclock.ClockRequest{UserID: "worker-1", QRData: payload})
	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestWorkedMessage(t *testing.T) {
	assert.Equal(t, "Clocked out. You worked 0h 2m.", workedMessage(2))
	assert.Equal(t, "Clocked out. You worked 2h 5m.", workedMessage(125))
}
