package coze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"wellmate-be/pkg/chatagent"
)

type CozeProvider struct {
	BaseURL      string
	APIKey       string
	DefaultBotID string
	Client       *http.Client
	StreamClient *http.Client
}

// Ensure CozeProvider implements Agent
var _ chatagent.Agent = &CozeProvider{}

func NewCozeProvider(baseURL, apiKey, defaultBotID string, timeout time.Duration) *CozeProvider {
	return &CozeProvider{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		DefaultBotID: defaultBotID,
		Client: &http.Client{
			Timeout: timeout,
		},
		// Streams outlive any fixed deadline; only the first byte is bounded.
		StreamClient: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: timeout,
			},
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type cozeChatRequest struct {
	ConversationID string `json:"conversation_id"`
	BotID          string `json:"bot_id"`
	User           string `json:"user"`
	Query          string `json:"query"`
	Stream         bool   `json:"stream"`
}

type cozeMessage struct {
	Role        string `json:"role"`
	Type        string `json:"type"`
	Content     string `json:"content"`
	ContentType string `json:"content_type"`
}

type cozeChatResponse struct {
	Code           int           `json:"code"`
	Msg            string        `json:"msg"`
	ConversationID string        `json:"conversation_id"`
	Messages       []cozeMessage `json:"messages"`
}

type cozeStreamEvent struct {
	Event   string      `json:"event"`
	Message cozeMessage `json:"message"`
	IsFinal bool        `json:"is_finish"`
}

// --- Interface Implementation ---

func (c *CozeProvider) newRequest(ctx context.Context, req chatagent.Request, stream bool, opts []chatagent.Option) (*http.Request, error) {
	// 1. Process Options
	options := &chatagent.Options{BotID: c.DefaultBotID}
	for _, opt := range opts {
		opt(options)
	}

	user := req.User
	if user == "" {
		user = chatagent.AnonymousUser
	}

	// 2. Prepare Payload
	payloadBytes, err := json.Marshal(cozeChatRequest{
		ConversationID: req.ConversationID,
		BotID:          options.BotID,
		User:           user,
		Query:          req.Query,
		Stream:         stream,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "*/*")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	return httpReq, nil
}

func (c *CozeProvider) Send(ctx context.Context, req chatagent.Request, opts ...chatagent.Option) (string, error) {
	httpReq, err := c.newRequest(ctx, req, false, opts)
	if err != nil {
		return "", err
	}

	// 3. Send Request
	resp, err := c.Client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: coze request failed: %v", chatagent.ErrAgentUnavailable, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", chatagent.ErrAgentUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d, body: %s", chatagent.ErrAgentUnavailable, resp.StatusCode, string(bodyBytes))
	}

	// 4. Parse Response
	var cozeResp cozeChatResponse
	if err := json.Unmarshal(bodyBytes, &cozeResp); err != nil {
		return "", fmt.Errorf("%w: unmarshal response: %v", chatagent.ErrAgentUnavailable, err)
	}
	if cozeResp.Code != 0 {
		return "", fmt.Errorf("%w: coze code %d: %s", chatagent.ErrAgentUnavailable, cozeResp.Code, cozeResp.Msg)
	}

	// 5. First non-blank answer wins
	for _, msg := range cozeResp.Messages {
		if msg.Type != "answer" {
			continue
		}
		if content := strings.TrimSpace(msg.Content); content != "" {
			return content, nil
		}
	}
	return "", chatagent.ErrNoAnswer
}

func (c *CozeProvider) Stream(ctx context.Context, req chatagent.Request, opts ...chatagent.Option) (*chatagent.Stream, error) {
	httpReq, err := c.newRequest(ctx, req, true, opts)
	if err != nil {
		return nil, err
	}

	resp, err := c.StreamClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: coze stream failed: %v", chatagent.ErrAgentUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d, body: %s", chatagent.ErrAgentUnavailable, resp.StatusCode, string(body))
	}

	return chatagent.NewStream(resp.Body, req.ConversationID, ParseStreamLine), nil
}

// ParseStreamLine returns the answer fragment of one "data:" SSE line.
func ParseStreamLine(line []byte) string {
	payload, ok := bytes.CutPrefix(line, []byte("data:"))
	if !ok {
		return ""
	}
	var event cozeStreamEvent
	if err := json.Unmarshal(bytes.TrimSpace(payload), &event); err != nil {
		return ""
	}
	if event.Event != "message" || event.Message.Type != "answer" {
		return ""
	}
	return event.Message.Content
}
