package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

// Vision asks an LLM oracle open-ended yes/no questions about a screenshot.
// Used where deterministic selectors are insufficient ("is the cost chart
// rendered with data"). Callers treat it as best-effort.
type Vision struct {
	url  string
	http *retryablehttp.Client
}

// VisionResult is the oracle's answer.
type VisionResult struct {
	Found   bool   `json:"found"`
	Details string `json:"details"`
}

// NewVision creates a vision oracle client for the given endpoint.
func NewVision(url string, retries int) *Vision {
	return &Vision{url: url, http: newHTTPClient(retries)}
}

type visionRequest struct {
	Screenshot string `json:"screenshot"` // base64 png
	Question   string `json:"question"`
}

// Check sends the screenshot and question, returning the oracle's verdict.
// Transport or decode errors are returned to the caller, which decides the
// fallback policy (the Client assumes found:true).
func (v *Vision) Check(ctx context.Context, screenshotB64, question string) (VisionResult, error) {
	data, err := json.Marshal(visionRequest{Screenshot: screenshotB64, Question: question})
	if err != nil {
		return VisionResult{}, fmt.Errorf("marshal vision request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, v.url, bytes.NewReader(data))
	if err != nil {
		return VisionResult{}, fmt.Errorf("build vision request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.http.Do(req)
	if err != nil {
		return VisionResult{}, fmt.Errorf("call vision oracle: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return VisionResult{}, fmt.Errorf("read vision response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return VisionResult{}, fmt.Errorf("vision oracle: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var res VisionResult
	if err := json.Unmarshal(body, &res); err != nil {
		return VisionResult{}, fmt.Errorf("decode vision response: %w", err)
	}
	return res, nil
}
