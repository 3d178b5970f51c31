package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVision_Check(t *testing.T) {
	t.Run("found verdict", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req visionRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "c2NyZWVu", req.Screenshot)
			assert.Equal(t, "is the cost chart visible?", req.Question)
			writeJSON(t, w, VisionResult{Found: true, Details: "chart rendered with 3 series"})
		}))
		defer srv.Close()

		v := NewVision(srv.URL, 0)
		res, err := v.Check(context.Background(), "c2NyZWVu", "is the cost chart visible?")
		require.NoError(t, err)
		assert.True(t, res.Found)
		assert.Equal(t, "chart rendered with 3 series", res.Details)
	})

	t.Run("not found verdict", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, VisionResult{Found: false, Details: "the chart area is empty"})
		}))
		defer srv.Close()

		v := NewVision(srv.URL, 0)
		res, err := v.Check(context.Background(), "c2NyZWVu", "is the cost chart visible?")
		require.NoError(t, err)
		assert.False(t, res.Found)
	})

	t.Run("http error returned to caller", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "model overloaded", http.StatusBadRequest)
		}))
		defer srv.Close()

		v := NewVision(srv.URL, 0)
		_, err := v.Check(context.Background(), "c2NyZWVu", "anything?")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 400")
		assert.Contains(t, err.Error(), "model overloaded")
	})

	t.Run("unreachable oracle", func(t *testing.T) {
		v := NewVision("http://127.0.0.1:1", 0)
		_, err := v.Check(context.Background(), "c2NyZWVu", "anything?")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "call vision oracle")
	})
}
