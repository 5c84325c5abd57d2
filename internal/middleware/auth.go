package middleware

import (
	"net/http"
	"time"

	"github.com/badkluster/taller-backend-sub000/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ClaimsKey     = "claims"
	SessionCookie = "taller_session"
)

// SessionClaims are the custom claims embedded in the session cookie token.
type SessionClaims struct {
	Usuario string `json:"usuario"`
	jwt.RegisteredClaims
}

// NewSessionToken signs a session JWT for the operator, valid for hours.
func NewSessionToken(secret, usuario string, hours int) (string, error) {
	claims := SessionClaims{
		Usuario: usuario,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(hours) * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// SessionAuth validates the session cookie on every protected route.
func SessionAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(SessionCookie)
		if err != nil || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
			return
		}

		claims := &SessionClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Sesion invalida o expirada"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// GetClaims retrieves typed session claims from the Gin context.
func GetClaims(c *gin.Context) *SessionClaims {
	claims, _ := c.MustGet(ClaimsKey).(*SessionClaims)
	return claims
}
