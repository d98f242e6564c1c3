package auth

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Claims is the JWT payload this server understands. The identity provider
// sets sub to the user id, role to one of the Role* constants, and actor_id
// to the doctor/patient record the user is bound to.
type Claims struct {
	jwt.RegisteredClaims
	Role    string `json:"role"`
	ActorID string `json:"actor_id,omitempty"`
}

// JWTConfig configures token validation.
type JWTConfig struct {
	Issuer   string
	Audience string
	JWKSURL  string
	// SigningKey enables HS256 validation for development and tests.
	SigningKey []byte
}

// JWKSKey represents a single JSON Web Key from a JWKS endpoint.
type JWKSKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// JWKSResponse represents the response from a JWKS endpoint.
type JWKSResponse struct {
	Keys []JWKSKey `json:"keys"`
}

// JWKSCache caches JWKS keys fetched from a remote endpoint with a TTL.
type JWKSCache struct {
	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	jwksURL   string
	ttl       time.Duration
	fetchedAt time.Time
	client    *http.Client
}

// NewJWKSCache creates a JWKS cache that fetches keys from the given URL.
func NewJWKSCache(jwksURL string, ttl time.Duration) *JWKSCache {
	return &JWKSCache{
		keys:    make(map[string]*rsa.PublicKey),
		jwksURL: jwksURL,
		ttl:     ttl,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// GetKey returns the RSA public key for the given kid, refetching the JWKS
// when the cache is expired or the kid is unknown.
func (c *JWKSCache) GetKey(kid string) (*rsa.PublicKey, error) {
	c.mu.RLock()
	key, ok := c.keys[kid]
	expired := time.Since(c.fetchedAt) > c.ttl
	c.mu.RUnlock()

	if ok && !expired {
		return key, nil
	}

	if err := c.fetch(); err != nil {
		return nil, fmt.Errorf("fetching JWKS: %w", err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	key, ok = c.keys[kid]
	if !ok {
		return nil, fmt.Errorf("key with kid %q not found in JWKS", kid)
	}
	return key, nil
}

func (c *JWKSCache) fetch() error {
	resp, err := c.client.Get(c.jwksURL)
	if err != nil {
		return fmt.Errorf("GET %s: %w", c.jwksURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	var jwks JWKSResponse
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return fmt.Errorf("decoding JWKS response: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(jwks.Keys))
	for _, k := range jwks.Keys {
		if k.Kty != "RSA" {
			continue
		}
		pub, err := jwkToRSA(k)
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}

	c.mu.Lock()
	c.keys = keys
	c.fetchedAt = time.Now()
	c.mu.Unlock()

	return nil
}

func jwkToRSA(k JWKSKey) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}

	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}

// JWTMiddleware validates the Bearer token on every request and stores the
// resulting Identity in the request context.
func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	var jwks *JWKSCache
	if cfg.JWKSURL != "" {
		jwks = NewJWKSCache(cfg.JWKSURL, 15*time.Minute)
	}

	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if len(cfg.SigningKey) > 0 {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return cfg.SigningKey, nil
		}
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		if jwks == nil {
			return nil, fmt.Errorf("no JWKS endpoint configured")
		}
		kid, _ := token.Header["kid"].(string)
		return jwks.GetKey(kid)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
			if cfg.Issuer != "" {
				opts = append(opts, jwt.WithIssuer(cfg.Issuer))
			}
			if cfg.Audience != "" {
				opts = append(opts, jwt.WithAudience(cfg.Audience))
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(raw, claims, keyFunc, opts...)
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			id, err := identityFromClaims(claims)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			ctx := WithIdentity(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func identityFromClaims(claims *Claims) (Identity, error) {
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("token subject is not a user id")
	}

	switch claims.Role {
	case RolePatient, RoleDoctor, RoleAdmin:
	default:
		return Identity{}, fmt.Errorf("unrecognized role %q", claims.Role)
	}

	id := Identity{UserID: userID, Role: claims.Role}
	if claims.ActorID != "" {
		actorID, err := uuid.Parse(claims.ActorID)
		if err != nil {
			return Identity{}, fmt.Errorf("actor_id is not a valid id")
		}
		id.ActorID = actorID
	}

	if (id.Role == RolePatient || id.Role == RoleDoctor) && id.ActorID == uuid.Nil {
		return Identity{}, fmt.Errorf("%s token missing actor_id", id.Role)
	}

	return id, nil
}

// DevAuthMiddleware injects an identity from request headers for local
// development. X-User-ID, X-User-Role, and X-Actor-ID override the default
// admin identity. Never enabled outside ENV=development.
func DevAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := Identity{UserID: uuid.New(), Role: RoleAdmin}

			if v := c.Request().Header.Get("X-User-ID"); v != "" {
				if parsed, err := uuid.Parse(v); err == nil {
					id.UserID = parsed
				}
			}
			if v := c.Request().Header.Get("X-User-Role"); v != "" {
				id.Role = v
			}
			if v := c.Request().Header.Get("X-Actor-ID"); v != "" {
				if parsed, err := uuid.Parse(v); err == nil {
					id.ActorID = parsed
				}
			}

			ctx := WithIdentity(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
