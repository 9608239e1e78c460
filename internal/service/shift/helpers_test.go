package shift

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/profile"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/repository/memory"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/require"
)

var (
	testTokenAuth = jwtauth.New("HS256", []byte("test-secret"), nil)
	t0            = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
)

func authedContext(t *testing.T, userID string) context.Context {
	t.Helper()
	token, _, err := testTokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"type":    "access",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

// at builds a clock-in request from the reported coordinates
func at(lat, lng float64) shift.ClockInRequest {
	return shift.ClockInRequest{Latitude: &lat, Longitude: &lng}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []shift.ChangeEvent
}

func (p *recordingPublisher) PublishShiftChange(ctx context.Context, event shift.ChangeEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) actions() []shift.ChangeAction {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shift.ChangeAction, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Action)
	}
	return out
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	shifts    *memory.ShiftRepository
	locations *memory.LocationRepository
	profiles  *memory.ProfileRepository
	publisher *recordingPublisher
	clock     *fakeClock
	svc       *ShiftServiceImpl
	admin     *AdminShiftServiceImpl
}

// newFixture configures the restaurant at (52.3676, 4.9041) with a 50 m radius,
// one admin "admin-1" and one worker "worker-1".
func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		shifts:    memory.NewShiftRepository(),
		locations: memory.NewLocationRepository(),
		profiles:  memory.NewProfileRepository(),
		publisher: &recordingPublisher{},
		clock:     &fakeClock{now: t0},
	}

	_, err := f.locations.Upsert(context.Background(), location.RestaurantLocation{
		ID:           "0195a0f2-0000-7000-8000-000000000001",
		Name:         "Restaurant",
		Latitude:     52.3676,
		Longitude:    4.9041,
		RadiusMeters: 50,
	})
	require.NoError(t, err)

	f.profiles.Put(profile.Profile{ID: "admin-1", FullName: "Anna de Vries", Role: profile.RoleAdmin})
	f.profiles.Put(profile.Profile{ID: "worker-1", FullName: "Wim Bakker", Role: profile.RoleWorker})

	f.svc = NewShiftService(f.shifts, f.locations, f.profiles, f.publisher).(*ShiftServiceImpl)
	f.svc.now = f.clock.Now

	f.admin = NewAdminShiftService(f.shifts, f.profiles, f.publisher, time.UTC).(*AdminShiftServiceImpl)
	f.admin.now = f.clock.Now

	return f
}

func (f *fixture) openShifts(t *testing.T, userID string) int {
	t.Helper()
	open, err := f.shifts.ListOpen(context.Background())
	require.NoError(t, err)
	n := 0
	for _, s := range open {
		if s.UserID == userID {
			n++
		}
	}
	return n
}
