package multimodal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var ErrUnavailable = errors.New("multimodal: service unavailable")

// Client talks to the LanguageBind/Whisper sidecar. Results are passed through
// as the service produced them.
type Client struct {
	BaseURL string
	Client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

type AnalyzeRequest struct {
	ImageURL   string `json:"image_url,omitempty"`
	AudioURL   string `json:"audio_url,omitempty"`
	VideoURL   string `json:"video_url,omitempty"`
	TopK       int    `json:"top_k,omitempty"`
	CustomText string `json:"custom_text,omitempty"`
}

type TranscribeRequest struct {
	AudioURL string `json:"audio_url"`
}

type TranscribeResult struct {
	Success         bool   `json:"success"`
	TranscribedText string `json:"transcribed_text"`
	Language        string `json:"language"`
	Error           string `json:"error,omitempty"`
}

type serviceError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Analyze returns the raw analysis document.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := c.post(ctx, "/analyze", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Transcribe(ctx context.Context, req TranscribeRequest) (*TranscribeResult, error) {
	var out TranscribeResult
	if err := c.post(ctx, "/transcribe", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		var se serviceError
		if json.Unmarshal(respBytes, &se) == nil && se.Error != "" {
			return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, se.Error)
		}
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	if err := json.Unmarshal(respBytes, out); err != nil {
		return fmt.Errorf("%w: unmarshal response: %v", ErrUnavailable, err)
	}
	return nil
}
