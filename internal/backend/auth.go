package backend

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	accessCookie  = "access_token"
	refreshCookie = "refresh_token"

	accessTTL  = 15 * time.Minute
	refreshTTL = 72 * time.Hour

	userIDKey = "user_id"
)

var errUnauthorized = errors.New("unauthorized")

type claims struct {
	UserID string `json:"user_id"`
	Kind   string `json:"kind"`
	jwt.RegisteredClaims
}

type tokenIssuer struct {
	secret []byte
	now    func() time.Time
}

func newTokenIssuer(secret []byte) *tokenIssuer {
	return &tokenIssuer{secret: secret, now: time.Now}
}

func (t *tokenIssuer) issue(userID, kind string, ttl time.Duration) (string, error) {
	now := t.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		UserID: userID,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return tok.SignedString(t.secret)
}

// parse validates a token of the given kind and returns its user ID
func (t *tokenIssuer) parse(raw, kind string) (string, error) {
	c := &claims{}
	tok, err := jwt.ParseWithClaims(raw, c, func(tok *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", err
	}
	if !tok.Valid || c.Kind != kind || c.UserID == "" {
		return "", errUnauthorized
	}
	return c.UserID, nil
}

// setSession issues a fresh access and refresh token pair as cookies
func (s *Server) setSession(c *gin.Context, userID string) error {
	access, err := s.tokens.issue(userID, accessCookie, accessTTL)
	if err != nil {
		return err
	}
	refresh, err := s.tokens.issue(userID, refreshCookie, refreshTTL)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessCookie, access, int(accessTTL.Seconds()), "/", "", false, true)
	c.SetCookie(refreshCookie, refresh, int(refreshTTL.Seconds()), "/", "", false, true)
	return nil
}

func clearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessCookie, "", -1, "/", "", false, true)
	c.SetCookie(refreshCookie, "", -1, "/", "", false, true)
}

// requireAuth accepts a valid access cookie, or re-issues the access
// cookie from a valid refresh cookie.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, err := c.Cookie(accessCookie); err == nil && raw != "" {
			if userID, err := s.tokens.parse(raw, accessCookie); err == nil {
				c.Set(userIDKey, userID)
				c.Next()
				return
			}
		}

		raw, err := c.Cookie(refreshCookie)
		if err != nil || raw == "" {
			s.respondError(c, http.StatusUnauthorized, errUnauthorized)
			return
		}
		userID, err := s.tokens.parse(raw, refreshCookie)
		if err != nil {
			s.respondError(c, http.StatusUnauthorized, errors.New("token expired"))
			return
		}

		access, err := s.tokens.issue(userID, accessCookie, accessTTL)
		if err != nil {
			s.respondError(c, http.StatusInternalServerError, err)
			return
		}
		s.logger.Debug("access token refreshed", "user", userID)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(accessCookie, access, int(accessTTL.Seconds()), "/", "", false, true)
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
