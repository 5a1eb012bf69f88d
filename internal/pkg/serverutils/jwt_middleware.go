package serverutils

import (
	"errors"
	"strings"

	"wellmate-be/internal/constant"
	"wellmate-be/internal/pkg/apperror"
	"wellmate-be/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	LocalUserID   = "user_id"
	LocalUsername = "username"
)

// BearerToken pulls the token out of an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", apperror.Auth(constant.ErrCodeMissingToken, "missing access token")
	}
	tokenStr, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(tokenStr) == "" {
		return "", apperror.Auth(constant.ErrCodeInvalidTokenFormat, "authorization header must be: Bearer <token>")
	}
	return strings.TrimSpace(tokenStr), nil
}

// VerifyAccessToken maps token errors onto the auth error codes.
func VerifyAccessToken(issuer token.IIssuer, tokenStr string) (*token.Claims, error) {
	claims, err := issuer.VerifyType(tokenStr, token.TypeAccess)
	switch {
	case errors.Is(err, token.ErrInvalidTokenType):
		return nil, apperror.Auth(constant.ErrCodeInvalidTokenType, "access token required")
	case err != nil:
		return nil, apperror.Auth(constant.ErrCodeInvalidToken, "token is invalid or expired")
	}
	return claims, nil
}

func JwtMiddleware(issuer token.IIssuer) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr, err := BearerToken(ctx.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}
		claims, err := VerifyAccessToken(issuer, tokenStr)
		if err != nil {
			return err
		}
		ctx.Locals(LocalUserID, claims.UserID)
		ctx.Locals(LocalUsername, claims.Username)
		return ctx.Next()
	}
}

// UserID returns the authenticated user set by JwtMiddleware.
func UserID(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := ctx.Locals(LocalUserID).(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Auth(constant.ErrCodeInvalidToken, "token subject is not a valid user id")
	}
	return id, nil
}
