package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/251219-go-pkg-rentaroom/internal/observability"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/actor"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/booking"
	"github.com/lwmacct/251219-go-pkg-rentaroom/pkg/coordinator"
)

type fakeBooking struct {
	mu           sync.Mutex
	calls        []string
	reservations map[string][]booking.Reservation
	err          error
	block        bool
}

func (f *fakeBooking) record(ctx context.Context, format string, args ...any) (string, error) {
	call := fmt.Sprintf(format, args...)
	f.mu.Lock()
	f.calls = append(f.calls, call)
	block, err := f.block, f.err
	f.mu.Unlock()
	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return "ok " + call, err
}

func (f *fakeBooking) AddAgent(ctx context.Context) (string, error) { return f.record(ctx, "add-agent") }
func (f *fakeBooking) Agents(context.Context) ([]string, error) {
	return []string{"agent-1", "agent-2"}, f.err
}
func (f *fakeBooking) ListHotels(ctx context.Context) (string, error) {
	return f.record(ctx, "list-hotels")
}
func (f *fakeBooking) AddHotel(ctx context.Context, name string, rooms int) (string, error) {
	return f.record(ctx, "add-hotel %s %d", name, rooms)
}
func (f *fakeBooking) DeleteHotel(ctx context.Context, name string) (string, error) {
	return f.record(ctx, "delete-hotel %s", name)
}
func (f *fakeBooking) ListAvailableRooms(ctx context.Context, minRooms int, date booking.Date) (string, error) {
	return f.record(ctx, "available %d %s", minRooms, date)
}
func (f *fakeBooking) ListReservations(ctx context.Context, hotel, customer string) (string, error) {
	return f.record(ctx, "list-reservations %s %s", hotel, customer)
}
func (f *fakeBooking) RequestReservations(ctx context.Context, byHotel map[string][]booking.Reservation) (string, error) {
	f.mu.Lock()
	f.reservations = byHotel
	f.mu.Unlock()
	return f.record(ctx, "reserve %d", len(byHotel))
}
func (f *fakeBooking) ConfirmReservation(ctx context.Context, id string) (string, error) {
	return f.record(ctx, "confirm %s", id)
}
func (f *fakeBooking) CancelReservation(ctx context.Context, id string) (string, error) {
	return f.record(ctx, "cancel %s", id)
}

func newServer(b Booking, opts Options) *httptest.Server {
	opts.Logger = zerolog.Nop()
	s := New(opts)
	s.MountHandlers(&Handlers{B: b})
	return httptest.NewServer(s.Mux())
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, string) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, rd)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func statusOf(t *testing.T, body string) string {
	t.Helper()
	var sb statusBody
	require.NoError(t, json.Unmarshal([]byte(body), &sb))
	return sb.Status
}

func TestRoutes(t *testing.T) {
	fb := &fakeBooking{}
	srv := newServer(fb, Options{})
	defer srv.Close()

	cases := []struct {
		method, path, body, want string
	}{
		{http.MethodPost, "/v1/agents", "", "ok add-agent"},
		{http.MethodGet, "/v1/hotels", "", "ok list-hotels"},
		{http.MethodPost, "/v1/hotels", `{"name":"h1","rooms":10}`, "ok add-hotel h1 10"},
		{http.MethodDelete, "/v1/hotels/h1", "", "ok delete-hotel h1"},
		{http.MethodGet, "/v1/hotels/available?min=3&date=16-06-2030", "", "ok available 3 16-06-2030"},
		{http.MethodGet, "/v1/hotels/available?date=16-06-2030", "", "ok available 1 16-06-2030"},
		{http.MethodGet, "/v1/hotels/h1/reservations?customer=alice", "", "ok list-reservations h1 alice"},
		{http.MethodPost, "/v1/reservations/abc/confirm", "", "ok confirm abc"},
		{http.MethodDelete, "/v1/reservations/abc", "", "ok cancel abc"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			code, body := do(t, srv, tc.method, tc.path, tc.body)
			require.Equal(t, http.StatusOK, code, body)
			assert.Equal(t, tc.want, statusOf(t, body))
		})
	}

	code, body := do(t, srv, http.MethodGet, "/v1/agents", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"agents":["agent-1","agent-2"]}`, body)

	code, body = do(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body)
}

func TestRequestReservations(t *testing.T) {
	fb := &fakeBooking{}
	srv := newServer(fb, Options{})
	defer srv.Close()

	code, body := do(t, srv, http.MethodPost, "/v1/reservations", `{
		"customer": "alice",
		"reservations": [
			{"hotel": "h1", "rooms": 2, "date": "15-06-2030"},
			{"hotel": "h2", "rooms": 1, "date": "16-06-2030"},
			{"hotel": "h1", "rooms": 3, "date": "17-06-2030"}
		]
	}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "ok reserve 2", statusOf(t, body))

	require.Len(t, fb.reservations["h1"], 2)
	require.Len(t, fb.reservations["h2"], 1)
	assert.Equal(t, 3, fb.reservations["h1"][1].RoomCount)
	assert.Equal(t, "alice", fb.reservations["h2"][0].Customer)
	assert.Len(t, fb.reservations["h1"][0].ID, 36)
}

func TestBadRequests(t *testing.T) {
	fb := &fakeBooking{}
	srv := newServer(fb, Options{})
	defer srv.Close()

	cases := []struct {
		name, method, path, body string
	}{
		{"malformed json", http.MethodPost, "/v1/hotels", `{"name":`},
		{"unknown field", http.MethodPost, "/v1/hotels", `{"name":"h1","rooms":1,"floors":3}`},
		{"short name", http.MethodPost, "/v1/hotels", `{"name":"h","rooms":1}`},
		{"zero rooms", http.MethodPost, "/v1/hotels", `{"name":"h1","rooms":0}`},
		{"bad min", http.MethodGet, "/v1/hotels/available?min=x&date=16-06-2030", ""},
		{"bad date", http.MethodGet, "/v1/hotels/available?date=2030-06-16", ""},
		{"no customer", http.MethodGet, "/v1/hotels/h1/reservations", ""},
		{"no reservations", http.MethodPost, "/v1/reservations", `{"customer":"alice","reservations":[]}`},
		{"negative rooms", http.MethodPost, "/v1/reservations", `{"customer":"alice","reservations":[{"hotel":"h1","rooms":-1,"date":"15-06-2030"}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := do(t, srv, tc.method, tc.path, tc.body)
			assert.Equal(t, http.StatusBadRequest, code, body)
			var p problem
			require.NoError(t, json.Unmarshal([]byte(body), &p))
			assert.Equal(t, http.StatusBadRequest, p.Status)
		})
	}
	assert.Empty(t, fb.calls)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&actor.ResponseTimeout{Timeout: time.Second}, http.StatusGatewayTimeout},
		{coordinator.ErrNoAgents, http.StatusServiceUnavailable},
		{fmt.Errorf("ask: %w", actor.ErrActorNotFound), http.StatusServiceUnavailable},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			srv := newServer(&fakeBooking{err: tc.err}, Options{})
			defer srv.Close()

			code, body := do(t, srv, http.MethodGet, "/v1/hotels", "")
			assert.Equal(t, tc.want, code)
			assert.Contains(t, body, tc.err.Error())
		})
	}
}

func TestRequestTimeout(t *testing.T) {
	srv := newServer(&fakeBooking{block: true}, Options{RequestTimeout: 50 * time.Millisecond})
	defer srv.Close()

	code, body := do(t, srv, http.MethodGet, "/v1/hotels", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "timeout", body)
}

func TestRateLimit(t *testing.T) {
	srv := newServer(&fakeBooking{}, Options{RateLimit: 0.001, Burst: 1})
	defer srv.Close()

	code, _ := do(t, srv, http.MethodGet, "/v1/hotels", "")
	assert.Equal(t, http.StatusOK, code)

	code, body := do(t, srv, http.MethodGet, "/v1/hotels", "")
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Contains(t, body, "rate limit exceeded")
}

func TestMetricsRecorded(t *testing.T) {
	srv := newServer(&fakeBooking{}, Options{})
	defer srv.Close()

	counter := observability.HTTPRequests.WithLabelValues("/v1/hotels/{name}", http.MethodDelete, "200")
	before := testutil.ToFloat64(counter)

	code, _ := do(t, srv, http.MethodDelete, "/v1/hotels/h1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestMountMetrics(t *testing.T) {
	s := New(Options{Logger: zerolog.Nop()})
	s.Mount("/metrics", observability.MetricsHandler(observability.InitRegistry()))
	s.MountHandlers(&Handlers{B: &fakeBooking{}})
	srv := httptest.NewServer(s.Mux())
	defer srv.Close()

	do(t, srv, http.MethodGet, "/v1/hotels", "")
	code, body := do(t, srv, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "rentaroom_http_requests_total")
}
