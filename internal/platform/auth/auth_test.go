package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var testKey = []byte("test-signing-key")

func signToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := token.SignedString(testKey)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func doctorClaims(userID, doctorID uuid.UUID) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role:    RoleDoctor,
		ActorID: doctorID.String(),
	}
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	userID, doctorID := uuid.New(), uuid.New()
	raw := signToken(t, doctorClaims(userID, doctorID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})
	handler := func(c echo.Context) error {
		id, ok := IdentityFromContext(c.Request().Context())
		if !ok {
			t.Fatal("expected identity in context")
		}
		if id.UserID != userID {
			t.Errorf("expected user %s, got %s", userID, id.UserID)
		}
		if id.Role != RoleDoctor || id.ActorID != doctorID {
			t.Errorf("unexpected identity %+v", id)
		}
		return c.NoContent(http.StatusOK)
	}

	if err := mw(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJWTMiddleware_MissingToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})
	err := mw(func(c echo.Context) error { return nil })(c)

	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_BadRole(t *testing.T) {
	e := echo.New()
	claims := doctorClaims(uuid.New(), uuid.New())
	claims.Role = "superuser"
	raw := signToken(t, claims)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	c := e.NewContext(req, httptest.NewRecorder())

	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})
	err := mw(func(c echo.Context) error { return nil })(c)

	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for unrecognized role, got %v", err)
	}
}

func TestJWTMiddleware_DoctorNeedsActorID(t *testing.T) {
	e := echo.New()
	claims := doctorClaims(uuid.New(), uuid.New())
	claims.ActorID = ""
	raw := signToken(t, claims)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	c := e.NewContext(req, httptest.NewRecorder())

	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})
	err := mw(func(c echo.Context) error { return nil })(c)

	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for doctor token without actor_id, got %v", err)
	}
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	e := echo.New()
	claims := doctorClaims(uuid.New(), uuid.New())
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	raw := signToken(t, claims)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	c := e.NewContext(req, httptest.NewRecorder())

	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})
	err := mw(func(c echo.Context) error { return nil })(c)

	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for expired token, got %v", err)
	}
}

func requireRoleTest(t *testing.T, identity Identity, roles []string) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), identity))
	c := e.NewContext(req, httptest.NewRecorder())

	mw := RequireRole(roles...)
	return mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c)
}

func TestRequireRole_Allows(t *testing.T) {
	id := Identity{UserID: uuid.New(), Role: RoleDoctor, ActorID: uuid.New()}
	if err := requireRoleTest(t, id, []string{RoleDoctor}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRequireRole_AdminOverride(t *testing.T) {
	id := Identity{UserID: uuid.New(), Role: RoleAdmin}
	if err := requireRoleTest(t, id, []string{RoleDoctor}); err != nil {
		t.Errorf("expected admin to pass, got %v", err)
	}
}

func TestRequireRole_Denies(t *testing.T) {
	id := Identity{UserID: uuid.New(), Role: RolePatient, ActorID: uuid.New()}
	err := requireRoleTest(t, id, []string{RoleDoctor})
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}
}

func TestDevAuthMiddleware_HeaderOverrides(t *testing.T) {
	e := echo.New()
	actorID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-Role", RolePatient)
	req.Header.Set("X-Actor-ID", actorID.String())
	c := e.NewContext(req, httptest.NewRecorder())

	handler := func(c echo.Context) error {
		id, _ := IdentityFromContext(c.Request().Context())
		if id.Role != RolePatient {
			t.Errorf("expected patient role, got %s", id.Role)
		}
		if id.ActorID != actorID {
			t.Errorf("expected actor %s, got %s", actorID, id.ActorID)
		}
		return nil
	}

	if err := DevAuthMiddleware()(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
