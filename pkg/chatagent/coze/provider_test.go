package coze

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wellmate-be/pkg/chatagent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCozeProviderSend(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr error
	}{
		{
			name:   "first non-blank answer",
			status: http.StatusOK,
			body: `{"code":0,"messages":[
				{"type":"verbose","content":"thinking"},
				{"type":"answer","content":"   "},
				{"type":"answer","content":"  多喝水，早点休息。 "},
				{"type":"answer","content":"second"}]}`,
			want: "多喝水，早点休息。",
		},
		{
			name:    "no answer messages",
			status:  http.StatusOK,
			body:    `{"code":0,"messages":[{"type":"follow_up","content":"还有别的问题吗"}]}`,
			wantErr: chatagent.ErrNoAnswer,
		},
		{
			name:    "upstream error status",
			status:  http.StatusBadGateway,
			body:    `bad gateway`,
			wantErr: chatagent.ErrAgentUnavailable,
		},
		{
			name:    "non-zero coze code",
			status:  http.StatusOK,
			body:    `{"code":4000,"msg":"bot not found"}`,
			wantErr: chatagent.ErrAgentUnavailable,
		},
		{
			name:    "garbage body",
			status:  http.StatusOK,
			body:    `<html>`,
			wantErr: chatagent.ErrAgentUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			p := NewCozeProvider(srv.URL, "key", "bot-1", 5*time.Second)
			got, err := p.Send(context.Background(), chatagent.Request{ConversationID: "c1", Query: "头疼"})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCozeProviderSendPayload(t *testing.T) {
	var got cozeChatRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = io.WriteString(w, `{"code":0,"messages":[{"type":"answer","content":"ok"}]}`)
	}))
	defer srv.Close()

	p := NewCozeProvider(srv.URL, "secret", "default-bot", 5*time.Second)
	_, err := p.Send(context.Background(),
		chatagent.Request{ConversationID: "conv-9", Query: "失眠"},
		chatagent.WithBotID("mental-bot"),
	)
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, cozeChatRequest{
		ConversationID: "conv-9",
		BotID:          "mental-bot",
		User:           chatagent.AnonymousUser,
		Query:          "失眠",
		Stream:         false,
	}, got)
}

func TestCozeProviderSendUnreachable(t *testing.T) {
	p := NewCozeProvider("http://127.0.0.1:1", "key", "bot", time.Second)
	_, err := p.Send(context.Background(), chatagent.Request{Query: "hi"})
	assert.ErrorIs(t, err, chatagent.ErrAgentUnavailable)
}

func TestCozeProviderStream(t *testing.T) {
	events := strings.Join([]string{
		`event:message`,
		`data:{"event":"message","message":{"role":"assistant","type":"answer","content":"你好"},"is_finish":false}`,
		``,
		`data:{"event":"message","message":{"role":"assistant","type":"verbose","content":"{}"},"is_finish":false}`,
		`data:{"event":"message","message":{"role":"assistant","type":"answer","content":"，注意休息"},"is_finish":true}`,
		`data:{"event":"done"}`,
	}, "\n")

	var streamed bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req cozeChatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		streamed = req.Stream
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, events)
	}))
	defer srv.Close()

	p := NewCozeProvider(srv.URL, "key", "bot", 5*time.Second)
	stream, err := p.Stream(context.Background(), chatagent.Request{ConversationID: "c-1", Query: "q"})
	require.NoError(t, err)
	defer stream.Close()

	raw, err := io.ReadAll(stream)
	require.NoError(t, err)

	assert.True(t, streamed)
	assert.Equal(t, events, string(raw))
	assert.Equal(t, "你好，注意休息", stream.Answer())
	assert.Equal(t, "c-1", stream.ConversationID)
}

func TestCozeProviderStreamErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewCozeProvider(srv.URL, "key", "bot", 5*time.Second)
	_, err := p.Stream(context.Background(), chatagent.Request{Query: "q"})
	assert.ErrorIs(t, err, chatagent.ErrAgentUnavailable)
}

func TestParseStreamLine(t *testing.T) {
	assert.Equal(t, "hi", ParseStreamLine([]byte(`data: {"event":"message","message":{"type":"answer","content":"hi"}}`)))
	assert.Empty(t, ParseStreamLine([]byte(`event:message`)))
	assert.Empty(t, ParseStreamLine([]byte(`data:not json`)))
	assert.Empty(t, ParseStreamLine([]byte(`data:{"event":"done"}`)))
}
