package ops

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth_ReflectsModelState(t *testing.T) {
	loaded := false
	srv := NewServer(":0", func() Status {
		if loaded {
			return Status{Status: "ok", ModelLoaded: true, ModelName: "random_forest"}
		}
		return Status{Status: "degraded", ModelLoaded: false}
	})
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var s Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&s))
	assert.Equal(t, "degraded", s.Status)
	assert.False(t, s.ModelLoaded)
	assert.Empty(t, s.ModelName)

	loaded = true
	resp, err = http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&s))
	assert.True(t, s.ModelLoaded)
	assert.Equal(t, "random_forest", s.ModelName)
}

func TestMetricsEndpointServes(t *testing.T) {
	srv := NewServer(":0", func() Status { return Status{Status: "ok", ModelLoaded: true} })
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthRejectsNonGET(t *testing.T) {
	srv := NewServer(":0", func() Status { return Status{} })
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/health", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
