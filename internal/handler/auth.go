package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/carmarket/internal/db"
	"github.com/carmarket/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const contextUserKey = "current_user"

const tokenLifetime = 72 * time.Hour

// issueToken signs a bearer token for the user.
func (a *API) issueToken(user *db.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(tokenLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

// userFromToken resolves the account behind a bearer token string. The
// account is loaded fresh so role changes and deactivation take effect on the
// next request, not at the token's expiry.
func (a *API) userFromToken(tokenString string) (*db.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	var user db.User
	if err := a.db.First(&user, uint(userIDFloat)).Error; err != nil {
		return nil, errors.New("account no longer exists")
	}
	if !user.IsActive {
		return nil, errors.New("account is deactivated")
	}

	return &user, nil
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return "", false
	}
	return tokenString, true
}

// AuthRequired rejects requests without a valid bearer token and stores the
// resolved account on the context.
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "authorization header missing or malformed")
			c.Abort()
			return
		}

		user, err := a.userFromToken(tokenString)
		if err != nil {
			respondError(c, http.StatusUnauthorized, err.Error())
			c.Abort()
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// OptionalAuth resolves the account when a valid token is present but lets
// anonymous requests through. Used by detail endpoints that show owners and
// admins their own unapproved content.
func (a *API) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c); ok {
			if user, err := a.userFromToken(tokenString); err == nil {
				c.Set(contextUserKey, user)
			}
		}
		c.Next()
	}
}

// AdminRequired rejects authenticated requests from non-admin accounts.
// Must run after AuthRequired.
func (a *API) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := contextUser(c)
		if !ok || !user.IsAdmin() {
			respondError(c, http.StatusForbidden, "admin capability required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func contextUser(c *gin.Context) (*db.User, bool) {
	value, exists := c.Get(contextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*db.User)
	return user, ok
}

// mustActor returns the caller as a service actor, rejecting the request
// when no account is attached to the context.
func mustActor(c *gin.Context) (service.Actor, bool) {
	user, ok := contextUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return service.Actor{}, false
	}
	return service.Actor{ID: user.ID, Admin: user.IsAdmin()}, true
}

// optionalActor returns the caller as a service actor when authenticated,
// nil otherwise.
func optionalActor(c *gin.Context) *service.Actor {
	user, ok := contextUser(c)
	if !ok {
		return nil
	}
	return &service.Actor{ID: user.ID, Admin: user.IsAdmin()}
}
