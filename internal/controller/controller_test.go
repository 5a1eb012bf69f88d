package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wellmate-be/internal/constant"
	"wellmate-be/internal/dto"
	"wellmate-be/internal/pkg/apperror"
	"wellmate-be/internal/pkg/logger"
	"wellmate-be/internal/pkg/serverutils"
	"wellmate-be/internal/service"
	"wellmate-be/pkg/chatagent"
	"wellmate-be/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChatService struct {
	res         *dto.ChatResponse
	err         error
	stream      string
	sessionType string
}

func (s *stubChatService) Chat(ctx context.Context, userId uuid.UUID, sessionType string, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	s.sessionType = sessionType
	return s.res, s.err
}

func (s *stubChatService) Stream(ctx context.Context, userId uuid.UUID, sessionType string, req *dto.ChatRequest) (*service.ChatStream, error) {
	s.sessionType = sessionType
	if s.err != nil {
		return nil, s.err
	}
	sessionId := uuid.MustParse("7b0e4c1a-1f6c-4a53-9a55-1f1c9f1d2b10")
	body := io.NopCloser(strings.NewReader(s.stream))
	return &service.ChatStream{
		Stream:    chatagent.NewStream(body, "conv-stream", nil),
		SessionId: &sessionId,
	}, nil
}

type stubHealthService struct {
	service.IHealthDataService
	period string
}

func (s *stubHealthService) GetStats(ctx context.Context, userId uuid.UUID, period string) (*dto.HealthStatsResponse, error) {
	s.period = period
	if period == "year" {
		return nil, apperror.Validation(constant.ErrCodeInvalidPeriod, "period must be one of day, week, month")
	}
	return &dto.HealthStatsResponse{UUID: userId.String(), Period: period}, nil
}

type envelope struct {
	Status    string          `json:"status"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	ErrorCode string          `json:"error_code"`
}

type testServer struct {
	app    *fiber.App
	bearer string
	userId uuid.UUID
}

func newTestServer(t *testing.T, chat service.IChatService, health service.IHealthDataService) *testServer {
	t.Helper()
	issuer := token.NewIssuer("test-secret", time.Hour, 24*time.Hour)
	userId := uuid.New()
	pair, err := issuer.Issue(userId.String(), "alice")
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandler(logger.NewNopLogger())})
	api := app.Group("/api/v1")
	auth := serverutils.JwtMiddleware(issuer)
	NewChatController(chat).RegisterRoutes(api, auth)
	NewHealthDataController(health).RegisterRoutes(api, auth)

	return &testServer{app: app, bearer: "Bearer " + pair.AccessToken, userId: userId}
}

func (s *testServer) do(t *testing.T, method, path, body string) (*http.Response, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", s.bearer)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp, env
}

func TestChatControllerSuccess(t *testing.T) {
	sessionId := uuid.NewString()
	chat := &stubChatService{res: &dto.ChatResponse{
		Response:       "多休息",
		SessionId:      &sessionId,
		ConversationId: "conv-1",
		IsNewSession:   true,
	}}
	srv := newTestServer(t, chat, &stubHealthService{})

	resp, env := srv.do(t, http.MethodPost, "/api/v1/health/mental/text", `{"message":"累"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, constant.SessionTypeMental, chat.sessionType)

	var data dto.ChatResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "多休息", data.Response)
	assert.Equal(t, sessionId, *data.SessionId)
	assert.Equal(t, "conv-1", data.ConversationId)
	assert.True(t, data.IsNewSession)
}

func TestChatControllerOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
		wantCode   string
	}{
		{name: "no answer is a warning", err: chatagent.ErrNoAnswer, wantStatus: http.StatusOK, wantBody: "warning"},
		{name: "agent down", err: apperror.AgentUnavailable("down", chatagent.ErrAgentUnavailable), wantStatus: http.StatusInternalServerError, wantBody: "error", wantCode: constant.ErrCodeAgentUnavailable},
		{name: "validation", err: apperror.MissingField("message"), wantStatus: http.StatusBadRequest, wantBody: "error", wantCode: constant.ErrCodeMissingField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &stubChatService{err: tt.err}, &stubHealthService{})
			resp, env := srv.do(t, http.MethodPost, "/api/v1/health/physical/text", `{"text":"hi"}`)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantBody, env.Status)
			assert.Equal(t, tt.wantCode, env.ErrorCode)
			if tt.wantBody == "warning" {
				assert.Equal(t, "null", string(env.Data))
			}
		})
	}
}

func TestChatControllerRejectsBadSessionId(t *testing.T) {
	srv := newTestServer(t, &stubChatService{}, &stubHealthService{})
	resp, env := srv.do(t, http.MethodPost, "/api/v1/health/physical/text", `{"message":"hi","session_id":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, constant.ErrCodeInvalidRequest, env.ErrorCode)
}

func TestChatControllerRequiresToken(t *testing.T) {
	srv := newTestServer(t, &stubChatService{}, &stubHealthService{})
	srv.bearer = ""
	resp, env := srv.do(t, http.MethodPost, "/api/v1/health/physical/text", `{"message":"hi"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, constant.ErrCodeMissingToken, env.ErrorCode)
}

func TestChatControllerStream(t *testing.T) {
	body := "data:{\"event\":\"message\"}\n\ndata:{\"event\":\"done\"}\n"
	srv := newTestServer(t, &stubChatService{stream: body}, &stubHealthService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/health/physical/text/stream", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", srv.bearer)
	resp, err := srv.app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "conv-stream", resp.Header.Get("X-Conversation-ID"))
	assert.Equal(t, "7b0e4c1a-1f6c-4a53-9a55-1f1c9f1d2b10", resp.Header.Get("X-Session-ID"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, body, string(raw))
}

func TestChatControllerStreamError(t *testing.T) {
	streamErr := apperror.AgentUnavailable("down", chatagent.ErrAgentUnavailable)
	streamErr.Code = constant.ErrCodeStream
	srv := newTestServer(t, &stubChatService{err: streamErr}, &stubHealthService{})

	resp, env := srv.do(t, http.MethodPost, "/api/v1/health/mental/text/stream", `{"message":"hi"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, constant.ErrCodeStream, env.ErrorCode)
}

func TestHealthStatsPeriod(t *testing.T) {
	health := &stubHealthService{}
	srv := newTestServer(t, &stubChatService{}, health)

	resp, env := srv.do(t, http.MethodGet, "/api/v1/health/data/stats", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, constant.StatsPeriodWeek, health.period)

	resp, env = srv.do(t, http.MethodGet, "/api/v1/health/data/stats?period=year", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, constant.ErrCodeInvalidPeriod, env.ErrorCode)
}
