package shift

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDurationMinutes(t *testing.T) {
	t0 := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		elapsed time.Duration
		rounded int
		floored int
	}{
		{"ninety seconds", 90 * time.Second, 2, 1},
		{"eighty nine seconds", 89 * time.Second, 1, 1},
		{"exact minutes", 125 * time.Minute, 125, 125},
		{"just under an hour", time.Hour - time.Millisecond, 60, 59},
		{"zero", 0, 0, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.rounded, RoundedMinutes(t0, t0.Add(c.elapsed)))
			assert.Equal(t, c.floored, FlooredMinutes(t0, t0.Add(c.elapsed)))
		})
	}
}

func TestClockInRequest_Validate(t *testing.T) {
	coords := func(lat, lng float64) ClockInRequest {
		return ClockInRequest{Latitude: &lat, Longitude: &lng}
	}

	ok := coords(52.3676, 4.9041)
	assert.NoError(t, ok.Validate())

	origin := coords(0, 0)
	assert.NoError(t, origin.Validate(), "an explicit zero is a position")

	bad := []ClockInRequest{
		coords(91, 0),
		coords(0, -181),
		coords(math.NaN(), 0),
		coords(0, math.Inf(1)),
		{},
		{Latitude: ok.Latitude},
		{Longitude: ok.Longitude},
	}
	for _, r := range bad {
		assert.Error(t, r.Validate(), "%+v", r)
	}

	missing := ClockInRequest{}
	err := missing.Validate()
	assert.EqualError(t, err, "latitude: latitude is required; longitude: longitude is required")
}

func TestShiftFilter_Range(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Amsterdam")
	if err != nil {
		t.Skip("tzdata not available")
	}
	start, end := "2026-03-01", "2026-03-02"
	f := ShiftFilter{StartDate: &start, EndDate: &end}
	assert.NoError(t, f.Validate())

	r := f.Range(loc)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, loc), *r.From)
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, loc), *r.To, "end date is inclusive")

	reversed := ShiftFilter{StartDate: &end, EndDate: &start}
	assert.Error(t, reversed.Validate())

	empty := ShiftFilter{}
	assert.NoError(t, empty.Validate())
	assert.Nil(t, empty.Range(loc).From)
	assert.Nil(t, empty.Range(loc).To)
}

func TestUpdateShiftRequest_Validate(t *testing.T) {
	id := "0195a0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b"
	out := "2026-03-02T11:05:00Z"
	r := UpdateShiftRequest{ID: id, ClockIn: "2026-03-02T09:00:00Z", ClockOut: &out}
	assert.NoError(t, r.Validate())

	before := "2026-03-02T08:00:00Z"
	r.ClockOut = &before
	assert.Error(t, r.Validate())

	r = UpdateShiftRequest{ID: "not-a-uuid", ClockIn: "2026-03-02T09:00:00Z"}
	assert.Error(t, r.Validate())

	r = UpdateShiftRequest{ID: id, ClockIn: ""}
	assert.Error(t, r.Validate())
}

func TestGeofenceError(t *testing.T) {
	var err error = &GeofenceError{DistanceMeters: 481.3, RadiusMeters: 50}
	assert.ErrorIs(t, err, ErrOutsideGeofence)
	assert.Contains(t, err.Error(), "481 m")
	assert.Contains(t, err.Error(), "50 m")
}
