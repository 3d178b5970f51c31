package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// novaServer builds an httptest server speaking the remote automation protocol.
func novaServer(t *testing.T, act func(instr string) novaActResponse) (*httptest.Server, *[]string) {
	t.Helper()
	var deleted []string

	mux := http.NewServeMux()
	mux.HandleFunc("POST /sessions", func(w http.ResponseWriter, r *http.Request) {
		var req novaStartRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.StartURL)
		writeJSON(t, w, novaStartResponse{SessionID: "nova-1"})
	})
	mux.HandleFunc("POST /sessions/{id}/act", func(w http.ResponseWriter, r *http.Request) {
		var req novaActRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeJSON(t, w, act(req.Instruction))
	})
	mux.HandleFunc("POST /sessions/{id}/screenshot", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, novaScreenshotResponse{Data: base64.StdEncoding.EncodeToString([]byte("png-bytes"))})
	})
	mux.HandleFunc("DELETE /sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		deleted = append(deleted, r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &deleted
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNovaEngine_Lifecycle(t *testing.T) {
	srv, deleted := novaServer(t, func(instr string) novaActResponse {
		return novaActResponse{Success: true, Response: "did: " + instr}
	})

	eng := newNovaEngine(Config{BaseURL: "https://evo.example.com", NovaURL: srv.URL})

	require.NoError(t, eng.Start(context.Background()))
	assert.Equal(t, "nova-1", eng.SessionID())

	resp, err := eng.Act(context.Background(), "click login")
	require.NoError(t, err)
	assert.Equal(t, "did: click login", resp)

	path := filepath.Join(t.TempDir(), "shot.png")
	require.NoError(t, eng.Screenshot(context.Background(), path))
	data, err := os.ReadFile(path) //nolint:gosec // test temp dir
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, eng.Stop())
	assert.Equal(t, []string{"nova-1"}, *deleted)
	assert.Empty(t, eng.SessionID())

	// second stop is a no-op, no extra delete call
	require.NoError(t, eng.Stop())
	assert.Len(t, *deleted, 1)
}

func TestNovaEngine_ActFailure(t *testing.T) {
	srv, _ := novaServer(t, func(string) novaActResponse {
		return novaActResponse{Success: false, Response: "partial output", Error: "element not visible"}
	})

	eng := newNovaEngine(Config{BaseURL: "https://evo.example.com", NovaURL: srv.URL})
	require.NoError(t, eng.Start(context.Background()))

	resp, err := eng.Act(context.Background(), "click hidden button")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "element not visible")
	assert.Equal(t, "partial output", resp) // partial response survives for diagnostics
}

func TestNovaEngine_ActBeforeStart(t *testing.T) {
	eng := newNovaEngine(Config{BaseURL: "https://evo.example.com", NovaURL: "http://127.0.0.1:1"})
	_, err := eng.Act(context.Background(), "click")
	require.ErrorIs(t, err, ErrSessionNotStarted)
}

func TestNovaEngine_StartErrors(t *testing.T) {
	t.Run("api error in body", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /sessions", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, novaStartResponse{Error: "capacity exhausted"})
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		eng := newNovaEngine(Config{BaseURL: "https://evo.example.com", NovaURL: srv.URL})
		err := eng.Start(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "capacity exhausted")
	})

	t.Run("missing session id", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /sessions", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, novaStartResponse{})
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		eng := newNovaEngine(Config{BaseURL: "https://evo.example.com", NovaURL: srv.URL})
		err := eng.Start(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no session id")
	})
}

func TestNovaEngine_StopTolerates404(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sessions", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, novaStartResponse{SessionID: "gone-soon"})
	})
	mux.HandleFunc("DELETE /sessions/{id}", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	eng := newNovaEngine(Config{BaseURL: "https://evo.example.com", NovaURL: srv.URL})
	require.NoError(t, eng.Start(context.Background()))
	require.NoError(t, eng.Stop())
}
