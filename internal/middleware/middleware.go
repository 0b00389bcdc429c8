package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"vending-machine/pkg"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	SessionCookie = "vm_session"
	SessionKey    = "session"
	ConnectField  = "token"

	SessionTTL = 24 * time.Hour
)

var errNoSessionID = errors.New("session token has no id")

// IssueSession signs a session token for sid.
func IssueSession(secret, sid string, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        sid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
	})
	return token.SignedString([]byte(secret))
}

// ParseSession validates a session token and returns its session id.
func ParseSession(secret, tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	// проверка подмены токена
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrSignatureInvalid
	}
	if claims.ID == "" {
		return "", errNoSessionID
	}
	return claims.ID, nil
}

// SessionMiddleware puts the browser's session id into the gin context,
// starting a new session when the cookie is missing or invalid.
func SessionMiddleware(secret string, log pkg.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sid string
		if raw, err := c.Cookie(SessionCookie); err == nil {
			sid, err = ParseSession(secret, raw)
			if err != nil {
				log.Warn("Invalid session token", zap.Error(err))
			}
		}

		if sid == "" {
			sid = uuid.NewString()
			token, err := IssueSession(secret, sid, time.Now())
			if err != nil {
				log.Error("failed to issue session token", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"errors": "Internal server error"})
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, token, int(SessionTTL.Seconds()), "/", "", false, true)
		}

		c.Set(SessionKey, sid)
		c.Next()
	}
}

// ConnectGuard rejects requests that do not carry token, either as a bearer
// Authorization header or as the "token" form field. An empty token lets
// every request through.
func ConnectGuard(token string, log pkg.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		got := c.PostForm(ConnectField)
		if auth := c.GetHeader("Authorization"); auth != "" {
			got = strings.TrimPrefix(auth, "Bearer ")
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			log.Warn("Connect rejected: bad token",
				zap.String("session", c.GetString(SessionKey)),
				zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"errors": "Invalid connect token"})
			return
		}
		c.Next()
	}
}
