package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI records the calls the simulator makes.
type fakeAPI struct {
	mu       sync.Mutex
	calls    []string
	bodies   map[string][]map[string]interface{}
	failPath string
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{bodies: map[string][]map[string]interface{}{}}
	srv := httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(srv.Close)
	return api, srv
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	f.bodies[r.URL.Path] = append(f.bodies[r.URL.Path], body)
	fail := f.failPath
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if r.URL.Path == fail {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"booking is completed"}`))
		return
	}
	if r.URL.Path != "/api/auth/login" && r.Header.Get("Authorization") != "Bearer sim-token" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch r.URL.Path {
	case "/api/auth/login":
		if body["password"] != "password123" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"sim-token"}`))
	case "/api/bookings":
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"b-1","status":"pending"}`))
	case "/api/invoices":
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"i-1"}`))
	default:
		_, _ = w.Write([]byte(`{"id":"b-1"}`))
	}
}

func (f *fakeAPI) callList() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func loggedIn(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c := NewClient(srv.URL + "/api")
	require.NoError(t, c.Login("manager", "password123"))
	return c
}

func TestClient_Login(t *testing.T) {
	_, srv := newFakeAPI(t)

	c := NewClient(srv.URL + "/api")
	err := c.Login("manager", "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errUnexpectedStatus))
	assert.Contains(t, err.Error(), "invalid credentials")

	require.NoError(t, c.Login("manager", "password123"))
	assert.Equal(t, "sim-token", c.token)
}

func TestSimulator_StepBookingOnly(t *testing.T) {
	api, srv := newFakeAPI(t)
	sim := NewSimulator(loggedIn(t, srv), 1)
	sim.CompleteRatio = 0

	require.NoError(t, sim.Step())
	assert.Equal(t, []string{"POST /api/auth/login", "POST /api/bookings"}, api.callList())
}

func TestSimulator_StepFullWorkflow(t *testing.T) {
	api, srv := newFakeAPI(t)
	sim := NewSimulator(loggedIn(t, srv), 1)
	sim.CompleteRatio = 1

	require.NoError(t, sim.Step())
	assert.Equal(t, []string{
		"POST /api/auth/login",
		"POST /api/bookings",
		"POST /api/bookings/b-1/arrival",
		"POST /api/bookings/b-1/complete",
		"POST /api/invoices",
	}, api.callList())

	api.mu.Lock()
	inv := api.bodies["/api/invoices"][0]
	api.mu.Unlock()
	assert.Equal(t, "b-1", inv["booking_id"])
	services, ok := inv["services"].([]interface{})
	require.True(t, ok)
	assert.Len(t, services, 1)
}

func TestSimulator_StepStopsOnError(t *testing.T) {
	api, srv := newFakeAPI(t)
	sim := NewSimulator(loggedIn(t, srv), 1)
	sim.CompleteRatio = 1
	api.mu.Lock()
	api.failPath = "/api/bookings/b-1/complete"
	api.mu.Unlock()

	err := sim.Step()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")
	assert.NotContains(t, api.callList(), "POST /api/invoices")
}

func TestSimulator_RandomBooking(t *testing.T) {
	sim := NewSimulator(NewClient("http://unused"), 42)
	today := time.Date(2024, 2, 21, 9, 0, 0, 0, time.UTC)
	sim.now = func() time.Time { return today }

	rego := regexp.MustCompile(`^[A-Z]{3}[0-9]{3}$`)
	for i := 0; i < 50; i++ {
		req, offer := sim.randomBooking()
		assert.Equal(t, offer.Type, req.ServiceType)
		assert.Equal(t, offer.Duration, req.Duration)
		assert.Contains(t, []string{"phone", "walk-in"}, req.Source)
		assert.Contains(t, slotTimes, req.ScheduledTime)
		assert.Regexp(t, rego, req.VehicleRego)

		day, err := time.Parse("2006-01-02", req.ScheduledDate)
		require.NoError(t, err)
		assert.False(t, day.Before(time.Date(2024, 2, 21, 0, 0, 0, 0, time.UTC)))
		assert.True(t, day.Before(time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)))
	}
}

func TestSimulator_RunCount(t *testing.T) {
	api, srv := newFakeAPI(t)
	sim := NewSimulator(loggedIn(t, srv), 7)
	sim.CompleteRatio = 0

	require.NoError(t, sim.Run(context.Background(), 3, 2, time.Millisecond))

	bookings := 0
	for _, c := range api.callList() {
		if c == "POST /api/bookings" {
			bookings++
		}
	}
	assert.Equal(t, 3, bookings)
}

func TestSimulator_RunStopsOnCancel(t *testing.T) {
	api, srv := newFakeAPI(t)
	sim := NewSimulator(loggedIn(t, srv), 7)
	sim.CompleteRatio = 0

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, sim.Run(ctx, 0, 1, time.Hour))

	assert.LessOrEqual(t, len(api.callList()), 2)
}

func TestGetInt(t *testing.T) {
	t.Setenv("SIM_TEST_INT", "5")
	assert.Equal(t, 5, getInt("SIM_TEST_INT", 1))
	t.Setenv("SIM_TEST_INT", "five")
	assert.Equal(t, 1, getInt("SIM_TEST_INT", 1))
	t.Setenv("SIM_TEST_INT", "")
	assert.Equal(t, 1, getInt("SIM_TEST_INT", 1))
}
