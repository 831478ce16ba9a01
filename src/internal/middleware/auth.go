package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rishipandey14/HRMS-Backend/src/internal/identity"
	"github.com/rishipandey14/HRMS-Backend/src/internal/models"
	"github.com/rishipandey14/HRMS-Backend/src/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// Claims represents JWT token claims
type Claims struct {
	UserID      string `json:"id"`
	Type        string `json:"type"`
	Role        string `json:"role"`
	CompanyCode string `json:"companyCode"`
	TokenType   string `json:"tokenType"`
	jwt.RegisteredClaims
}

// UserLookup resolves the user behind a token so role and company changes apply immediately.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// AuthMiddleware handles authentication and authorization
type AuthMiddleware struct {
	jwtSecret string
	users     UserLookup
	timeout   time.Duration
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtSecret string, users UserLookup, timeout time.Duration) *AuthMiddleware {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		users:     users,
		timeout:   timeout,
	}
}

// RequireAuth validates the bearer token and stores the caller's identity and role
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is required",
			})
			c.Abort()
			return
		}

		claims, err := m.validateJWTToken(token)
		if err != nil {
			logrus.WithError(err).Warn("JWT token validation failed")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		id, role, err := m.resolveIdentity(c.Request.Context(), claims)
		if err != nil {
			if errors.Is(err, models.ErrUserNotFound) {
				logrus.WithField("user_id", claims.UserID).Warn("Token refers to an unknown user")
				c.JSON(http.StatusUnauthorized, gin.H{
					"error": "User not found",
				})
			} else {
				logrus.WithError(err).Error("Identity resolution failed")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Identity validation error",
				})
			}
			c.Abort()
			return
		}

		c.Set(identity.ContextKey, id)
		c.Set(identity.RoleContextKey, role)

		logrus.WithFields(logrus.Fields{
			"identity":  id.Key(),
			"user_role": role,
		}).Debug("Request authenticated successfully")

		c.Next()
	}
}

// RequireAdminRights checks if the caller is an admin or super admin
func (m *AuthMiddleware) RequireAdminRights() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(identity.RoleContextKey); !exists {
			logrus.Error("User role not found in context - ensure RequireAuth middleware runs first")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		role := identity.RoleFromContext(c)
		if role != user.RoleAdmin && role != user.RoleSuperAdmin {
			id, _ := identity.FromContext(c)
			fields := logrus.Fields{"user_role": role}
			if id != nil {
				fields["identity"] = id.Key()
			}
			logrus.WithFields(fields).Warn("Caller attempted to access admin endpoint without admin privileges")

			c.JSON(http.StatusForbidden, gin.H{
				"error": "Admin or super admin privileges required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// resolveIdentity builds the caller's identity. Companies are trusted from the token; users are
// re-read so their current role and company code win over stale claims.
func (m *AuthMiddleware) resolveIdentity(ctx context.Context, claims *Claims) (identity.Identity, string, error) {
	if identity.Kind(claims.Type) == identity.KindCompany {
		return identity.New(claims.Type, claims.UserID, ""), claims.Role, nil
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	u, err := m.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, "", err
	}

	companyCode := u.CompanyCode
	if companyCode == "" {
		companyCode = claims.CompanyCode
	}
	role := u.Role
	if role == "" {
		role = claims.Role
	}

	return identity.New(claims.Type, u.ID, companyCode), role, nil
}

// extractToken extracts JWT token from Authorization header
func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		logrus.Debug("Authorization header missing")
		return ""
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		logrus.Debug("Invalid authorization header format")
		return ""
	}

	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

// validateJWTToken parses and validates JWT token (checks signature and expiration)
func (m *AuthMiddleware) validateJWTToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(m.jwtSecret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("token expired")
		}
		return nil, errors.New("invalid token")
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	// tokens issued before tokenType existed carry no type
	if claims.TokenType != "" && claims.TokenType != "access" {
		return nil, errors.New("invalid token type")
	}
	if claims.UserID == "" {
		return nil, errors.New("token without subject")
	}

	return claims, nil
}
