package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func init() { gin.SetMode(gin.TestMode) }

func signed(t *testing.T, key string, claims OperatorClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return s
}

func claimsFor(role string, ttl time.Duration) OperatorClaims {
	return OperatorClaims{
		OperatorID: "op-1",
		Name:       "Ana",
		Role:       role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
}

func protected(roles ...string) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", JWTAuth(secret), RequireRole(roles...), func(c *gin.Context) {
		c.String(http.StatusOK, OperatorName(c))
	})
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ── Auth ─────────────────────────────────────────────────────────────────────

func TestJWTAuth_ValidToken(t *testing.T) {
	w := get(protected(RoleChef), signed(t, secret, claimsFor(RoleChef, time.Hour)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ana", w.Body.String())
}

func TestJWTAuth_Rejects(t *testing.T) {
	cases := map[string]string{
		"missing":   "",
		"garbage":   "not-a-token",
		"wrong key": signed(t, "other", claimsFor(RoleChef, time.Hour)),
		"expired":   signed(t, secret, claimsFor(RoleChef, -time.Minute)),
		"no role":   signed(t, secret, claimsFor("", time.Hour)),
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			w := get(protected(RoleChef), tok)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "request_id")
		})
	}
}

func TestRequireRole_Forbidden(t *testing.T) {
	w := get(protected(RoleManager, RoleAdmin), signed(t, secret, claimsFor(RoleChef, time.Hour)))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOperatorName_FallsBackToID(t *testing.T) {
	c := claimsFor(RoleAdmin, time.Hour)
	c.Name = ""
	w := get(protected(RoleAdmin), signed(t, secret, c))
	assert.Equal(t, "op-1", w.Body.String())
}

// ── Request ID ───────────────────────────────────────────────────────────────

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))
}

// ── Rate limiter ─────────────────────────────────────────────────────────────

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(2, time.Minute))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}

func TestRateTable_WindowResetsAndPurges(t *testing.T) {
	tbl := &rateTable{entries: map[string]*rateEntry{}}
	now := time.Now()

	ok, _ := tbl.allow("a", 1, time.Second, now)
	assert.True(t, ok)
	ok, _ = tbl.allow("a", 1, time.Second, now)
	assert.False(t, ok)
	ok, _ = tbl.allow("a", 1, time.Second, now.Add(2*time.Second))
	assert.True(t, ok)

	tbl.allow("b", 1, time.Second, now.Add(2*time.Second))
	tbl.allow("c", 1, time.Second, now.Add(purgeEvery+time.Hour))
	assert.Len(t, tbl.entries, 1)
}

// ── Errors ───────────────────────────────────────────────────────────────────

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/x", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestErrorHandler_Generic500(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/x", func(c *gin.Context) { _ = c.Error(assert.AnError) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS("https://office.chianti.ro"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://office.chianti.ro")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://office.chianti.ro", w.Header().Get("Access-Control-Allow-Origin"))
}
