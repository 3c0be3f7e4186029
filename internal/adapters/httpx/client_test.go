package httpx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alejandrodnm/truthbounty/internal/adapters/httpx"
	"github.com/alejandrodnm/truthbounty/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recorder) ObserveUpstream(_, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func newClient(rec httpx.Recorder) *httpx.Client {
	opts := []httpx.Option{
		httpx.WithRetries(3, time.Millisecond),
		httpx.WithRateLimit(1000, 100),
	}
	if rec != nil {
		opts = append(opts, httpx.WithRecorder(rec))
	}
	return httpx.New("test", opts...)
}

func TestGetJSON_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	rec := &recorder{}
	var out struct {
		OK bool `json:"ok"`
	}
	err := newClient(rec).GetJSON(context.Background(), srv.URL, &out)

	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []string{"server_error", "server_error", "ok"}, rec.outcomes)
}

func TestGetJSON_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("bad limit"))
	}))
	defer srv.Close()

	var out any
	err := newClient(nil).GetJSON(context.Background(), srv.URL, &out)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Contains(t, err.Error(), "bad limit")
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetJSON_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	var out any
	err := newClient(nil).GetJSON(context.Background(), srv.URL, &out)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetJSON_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	var out any
	err := newClient(nil).GetJSON(context.Background(), srv.URL, &out)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Equal(t, int32(4), calls.Load(), "1 intento + 3 reintentos")
}

func TestQuery_GraphQLErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"data":null,"errors":[{"message":"indexing error"}]}`))
	}))
	defer srv.Close()

	var out any
	err := newClient(nil).Query(context.Background(), srv.URL, "{ users { id } }", nil, &out)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Contains(t, err.Error(), "indexing error")
}

func TestQuery_DecodesData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"users":[{"id":"0x1"},{"id":"0x2"}]}}`))
	}))
	defer srv.Close()

	var out struct {
		Users []struct {
			ID string `json:"id"`
		} `json:"users"`
	}
	err := newClient(nil).Query(context.Background(), srv.URL, "{ users { id } }", map[string]any{"first": 2}, &out)

	require.NoError(t, err)
	require.Len(t, out.Users, 2)
	assert.Equal(t, "0x2", out.Users[1].ID)
}

func TestGetJSON_CustomHTTPClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(200 * time.Millisecond):
		case <-r.Context().Done():
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := httpx.New("slow",
		httpx.WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}),
		httpx.WithRetries(0, time.Millisecond),
	)
	var out map[string]any
	err := c.GetJSON(context.Background(), srv.URL, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream, "un timeout de transporte es un fallo upstream")
}

func TestGetJSON_ConnectionRefusedIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := srv.URL
	srv.Close()

	c := httpx.New("down", httpx.WithRetries(1, time.Millisecond))
	var out map[string]any
	err := c.GetJSON(context.Background(), addr, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}
