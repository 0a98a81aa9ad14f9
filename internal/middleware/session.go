package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"storefront-web/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

const (
	ContextSessionID = "session_id"
	ContextUserID    = "user_id"

	HeaderUserID = "X-User-Id"
)

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Session gives every browser a signed session cookie. The session id keys the stored cart and
// the checkout flow. There is no login: the user id comes from the X-User-Id header when an
// upstream proxy sets it, otherwise the configured default applies.
func Session(cfg config.Session) echo.MiddlewareFunc {
	secret := []byte(cfg.Secret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sessionID, err := readSession(c, cfg.Cookie, secret)
			if err != nil {
				if !errors.Is(err, http.ErrNoCookie) {
					log.WithError(err).Debug("discarding invalid session cookie")
				}

				sessionID = uuid.NewString()
				token, err := signSession(sessionID, secret, cfg.MaxAge)
				if err != nil {
					return fmt.Errorf("sign session: %w", err)
				}
				c.SetCookie(&http.Cookie{
					Name:     cfg.Cookie,
					Value:    token,
					Path:     "/",
					MaxAge:   int(cfg.MaxAge.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set(ContextSessionID, sessionID)
			c.Set(ContextUserID, userIDFromHeader(c, cfg.DefaultUserID))
			return next(c)
		}
	}
}

func SessionID(c echo.Context) string {
	id, _ := c.Get(ContextSessionID).(string)
	return id
}

func UserID(c echo.Context) int64 {
	id, _ := c.Get(ContextUserID).(int64)
	return id
}

func signSession(sessionID string, secret []byte, maxAge time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if maxAge > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(maxAge))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func readSession(c echo.Context, name string, secret []byte) (string, error) {
	cookie, err := c.Cookie(name)
	if err != nil {
		return "", err
	}

	claims := &sessionClaims{}
	_, err = jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("parse session token: %w", err)
	}
	if _, err := uuid.Parse(claims.SessionID); err != nil {
		return "", fmt.Errorf("session id: %w", err)
	}

	return claims.SessionID, nil
}

func userIDFromHeader(c echo.Context, fallback int64) int64 {
	raw := c.Request().Header.Get(HeaderUserID)
	if raw == "" {
		return fallback
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		log.WithField("header", raw).Debug("ignoring invalid user id header")
		return fallback
	}
	return id
}
