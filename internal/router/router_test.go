package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/config"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/infra"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newEngine(env string) *gin.Engine {
	cfg := &config.Config{Env: env, JWTSecret: "test-secret", ServiceName: "production-costing"}
	breaker := infra.NewCircuitBreaker(infra.DefaultCBConfig("snapshot"))
	return router.New(cfg, nil, nil, breaker, router.Services{})
}

func TestSwaggerUI_OnlyOutsideProduction(t *testing.T) {
	cases := []struct {
		env  string
		want int
	}{
		{"development", http.StatusOK},
		{"production", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.env, func(t *testing.T) {
			r := newEngine(tc.env)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newEngine("development")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/reference-prices", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
