package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// novaEngine drives a remote instruction-driven automation API:
// POST /sessions, POST /sessions/{id}/act, POST /sessions/{id}/screenshot,
// DELETE /sessions/{id}. The remote side interprets free-text instructions,
// so unlike the playwright engine nothing is parsed locally.
type novaEngine struct {
	cfg       Config
	http      *retryablehttp.Client
	sessionID string
}

func newNovaEngine(cfg Config) *novaEngine {
	return &novaEngine{cfg: cfg, http: newHTTPClient(cfg.HTTPRetries)}
}

// newHTTPClient builds a retryable client with quiet logging.
// shared by the nova engine and the vision oracle.
func newHTTPClient(retries int) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = retries
	c.Logger = nil
	c.HTTPClient.Timeout = 2 * time.Minute
	return c
}

type novaStartRequest struct {
	StartURL string `json:"start_url"`
}

type novaStartResponse struct {
	SessionID string `json:"session_id"`
	Error     string `json:"error,omitempty"`
}

type novaActRequest struct {
	Instruction string `json:"instruction"`
}

type novaActResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

type novaScreenshotResponse struct {
	Data  string `json:"data"` // base64 png
	Error string `json:"error,omitempty"`
}

// Start creates a remote session opening on the base URL.
func (e *novaEngine) Start(ctx context.Context) error {
	body, err := e.post(ctx, "/sessions", novaStartRequest{StartURL: e.cfg.BaseURL})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	var resp novaStartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decode session response: %w", err)
	}
	if resp.Error != "" {
		return fmt.Errorf("create session: %s", resp.Error)
	}
	if resp.SessionID == "" {
		return errors.New("create session: no session id returned")
	}

	e.sessionID = resp.SessionID
	return nil
}

// Act forwards the raw instruction to the remote session.
func (e *novaEngine) Act(ctx context.Context, instr string) (string, error) {
	if e.sessionID == "" {
		return "", ErrSessionNotStarted
	}

	body, err := e.post(ctx, "/sessions/"+e.sessionID+"/act", novaActRequest{Instruction: instr})
	if err != nil {
		return "", err
	}

	var resp novaActResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode act response: %w", err)
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "action failed"
		}
		return resp.Response, errors.New(msg)
	}
	return resp.Response, nil
}

// Screenshot fetches a base64 capture from the remote session and writes it locally.
func (e *novaEngine) Screenshot(ctx context.Context, path string) error {
	if e.sessionID == "" {
		return ErrSessionNotStarted
	}

	body, err := e.post(ctx, "/sessions/"+e.sessionID+"/screenshot", struct{}{})
	if err != nil {
		return err
	}

	var resp novaScreenshotResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decode screenshot response: %w", err)
	}
	if resp.Error != "" {
		return fmt.Errorf("remote screenshot: %s", resp.Error)
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data)
	if err != nil {
		return fmt.Errorf("decode screenshot data: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write screenshot: %w", err)
	}
	return nil
}

func (e *novaEngine) SessionID() string { return e.sessionID }

// Stop deletes the remote session. Idempotent: no session means nothing to do,
// and a session already gone on the remote side (404) is treated as stopped.
func (e *novaEngine) Stop() error {
	if e.sessionID == "" {
		return nil
	}
	id := e.sessionID
	e.sessionID = ""

	req, err := retryablehttp.NewRequest(http.MethodDelete, e.cfg.NovaURL+"/sessions/"+id, nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}

	resp, err := e.http.Do(req)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete session: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// post sends a JSON body to the nova API and returns the raw response body.
func (e *novaEngine) post(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, e.cfg.NovaURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("call %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
