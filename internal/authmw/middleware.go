package authmw

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// CallerKey holds the acting user id in the gin context.
	CallerKey = "caller.id"
	// RolesKey holds the token roles. They are informational only.
	RolesKey = "caller.roles"

	UserHeader = "X-User-ID"
)

// TokenResolver turns a Keycloak access token into a caller identity.
type TokenResolver struct {
	Issuer   string // e.g. http://localhost:8080/realms/myrealm
	Audience string // checked only when set
	ClientID string // for client roles under resource_access[ClientID].roles

	Keyfunc jwt.Keyfunc
	Methods []string
	// optional clock skew
	Leeway time.Duration

	jwks *keyfunc.JWKS
}

// Build once at startup (don’t fetch JWKS on every request)
func NewTokenResolver(jwksURL, issuer, audience, clientID string) (*TokenResolver, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:  time.Hour,
		RefreshRateLimit: time.Minute * 5,
		RefreshTimeout:   time.Second * 10,
	})
	if err != nil {
		return nil, err
	}

	return &TokenResolver{
		Issuer:   issuer,
		Audience: audience,
		ClientID: clientID,
		Keyfunc:  jwks.Keyfunc,
		Methods:  []string{"RS256"},
		Leeway:   30 * time.Second,
		jwks:     jwks,
	}, nil
}

// Close stops the background JWKS refresh.
func (r *TokenResolver) Close() {
	if r != nil && r.jwks != nil {
		r.jwks.EndBackground()
	}
}

type KCClaims struct {
	jwt.RegisteredClaims

	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
	Name              string `json:"name"`

	RealmAccess struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`

	ResourceAccess map[string]struct {
		Roles []string `json:"roles"`
	} `json:"resource_access"`
}

// Resolve verifies tokenStr and returns the caller id (preferred_username,
// falling back to sub) and its roles.
func (r *TokenResolver) Resolve(tokenStr string) (string, []string, error) {
	opts := []jwt.ParserOption{
		jwt.WithIssuer(r.Issuer),
		jwt.WithLeeway(r.Leeway),
		jwt.WithValidMethods(r.Methods),
	}
	if r.Audience != "" {
		opts = append(opts, jwt.WithAudience(r.Audience))
	}

	claims := &KCClaims{}
	if _, err := jwt.ParseWithClaims(tokenStr, claims, r.Keyfunc, opts...); err != nil {
		return "", nil, err
	}

	id := claims.PreferredUsername
	if id == "" {
		id = claims.Subject
	}
	if id == "" {
		return "", nil, errors.New("token names no user")
	}
	return id, collectRoles(claims, r.ClientID), nil
}

// Identity records who is calling. A bearer token wins when a resolver is
// configured, then the X-User-ID header, then fallback (the selected current
// user). Nothing is rejected for lacking a role; handlers that need a caller
// use CallerID and answer 401 themselves.
func Identity(resolver *TokenResolver, fallback func() string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if resolver != nil {
			if tokenStr, err := extractAccessToken(c); err == nil {
				id, roles, err := resolver.Resolve(tokenStr)
				if err != nil {
					c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})

					return
				}
				c.Set(CallerKey, id)
				c.Set(RolesKey, roles)
				c.Next()

				return
			}
		}

		if id := strings.TrimSpace(c.GetHeader(UserHeader)); id != "" {
			c.Set(CallerKey, id)
		} else if fallback != nil {
			if id := fallback(); id != "" {
				c.Set(CallerKey, id)
			}
		}
		c.Next()
	}
}

// CallerID returns the id recorded by Identity.
func CallerID(c *gin.Context) (string, bool) {
	v, ok := c.Get(CallerKey)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// --- helpers ---

func extractAccessToken(c *gin.Context) (string, error) {
	// 1) Authorization: Bearer <token>
	authz := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[7:]), nil
	}

	// 2) cookie fallback
	if cookie, err := c.Cookie("access_token"); err == nil && cookie != "" {
		return cookie, nil
	}

	return "", errors.New("missing access token")
}

func collectRoles(claims *KCClaims, clientID string) []string {
	out := make([]string, 0, 16)

	// realm roles
	out = append(out, claims.RealmAccess.Roles...)

	// client roles (resource_access)
	if clientID != "" && claims.ResourceAccess != nil {
		if ra, ok := claims.ResourceAccess[clientID]; ok {
			out = append(out, ra.Roles...)
		}
	}

	return uniq(out)
}

func uniq(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
