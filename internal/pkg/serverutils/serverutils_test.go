package serverutils

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wellmate-be/internal/constant"
	"wellmate-be/internal/pkg/apperror"
	"wellmate-be/internal/pkg/logger"
	"wellmate-be/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(issuer token.IIssuer) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger.NewNopLogger())})
	app.Get("/me", JwtMiddleware(issuer), func(ctx *fiber.Ctx) error {
		id, err := UserID(ctx)
		if err != nil {
			return err
		}
		return ctx.JSON(SuccessResponse("ok", id.String()))
	})
	type body struct {
		Message string `json:"message" validate:"required"`
		Age     int    `json:"age" validate:"omitempty,min=0,max=150"`
	}
	app.Post("/echo", func(ctx *fiber.Ctx) error {
		var req body
		if err := ParseAndValidate(ctx, &req); err != nil {
			return err
		}
		return ctx.JSON(SuccessResponse("ok", req.Message))
	})
	app.Get("/boom", func(ctx *fiber.Ctx) error {
		return apperror.Conflict(constant.ErrCodeUserAlreadyExists, "username taken")
	})
	return app
}

func decodeError(t *testing.T, r io.Reader) ErrorBody {
	t.Helper()
	var b ErrorBody
	require.NoError(t, json.NewDecoder(r).Decode(&b))
	return b
}

func TestJwtMiddleware(t *testing.T) {
	issuer := token.NewIssuer("test-secret", time.Hour, 24*time.Hour)
	userID := uuid.New().String()
	pair, err := issuer.Issue(userID, "alice")
	require.NoError(t, err)
	app := newTestApp(issuer)

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantErr  string
	}{
		{name: "missing header", header: "", wantCode: 401, wantErr: constant.ErrCodeMissingToken},
		{name: "wrong scheme", header: "Token abc", wantCode: 401, wantErr: constant.ErrCodeInvalidTokenFormat},
		{name: "garbage token", header: "Bearer abc.def.ghi", wantCode: 401, wantErr: constant.ErrCodeInvalidToken},
		{name: "refresh token", header: "Bearer " + pair.RefreshToken, wantCode: 401, wantErr: constant.ErrCodeInvalidTokenType},
		{name: "access token", header: "Bearer " + pair.AccessToken, wantCode: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)
			if tt.wantErr != "" {
				b := decodeError(t, resp.Body)
				assert.Equal(t, StatusError, b.Status)
				assert.Equal(t, tt.wantErr, b.ErrorCode)
				return
			}
			var ok Response[string]
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&ok))
			assert.Equal(t, userID, ok.Data)
		})
	}
}

func TestParseAndValidate(t *testing.T) {
	app := newTestApp(token.NewIssuer("s", time.Hour, time.Hour))

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{name: "valid", body: `{"message":"hi"}`, wantCode: 200},
		{name: "missing field", body: `{}`, wantCode: 400, wantErr: constant.ErrCodeMissingField},
		{name: "out of range", body: `{"message":"hi","age":200}`, wantCode: 400, wantErr: constant.ErrCodeInvalidRequest},
		{name: "not json", body: `{`, wantCode: 400, wantErr: constant.ErrCodeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/echo", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, decodeError(t, resp.Body).ErrorCode)
			}
		})
	}
}

func TestErrorHandlerMapsKinds(t *testing.T) {
	app := newTestApp(token.NewIssuer("s", time.Hour, time.Hour))
	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 409, resp.StatusCode)
	assert.Equal(t, constant.ErrCodeUserAlreadyExists, decodeError(t, resp.Body).ErrorCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/nowhere", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, 403, StatusFor(apperror.KindForbidden))
	assert.Equal(t, 500, StatusFor(apperror.KindAgentUnavailable))
	assert.Equal(t, 500, StatusFor(apperror.KindPersistence))
}
