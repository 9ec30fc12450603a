package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/auth"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/config"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/telemetry"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/interfaces/http/handler"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/interfaces/http/middleware"
)

const (
	testShop        = "acme.myshopify.com"
	testAdminOrigin = "https://admin.example.com"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(engine *gin.Engine, method, target string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
	assert.Empty(t, r.public)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	denyAll := func(c *gin.Context) {
		c.AbortWithStatus(http.StatusUnauthorized)
	}
	r := NewRouter(engine, WithAdminMiddleware(denyAll))

	admin := NewDomainGroup("admin", "/things")
	admin.GET("", func(c *gin.Context) { c.String(http.StatusOK, "things") })
	public := NewDomainGroup("public", "")
	public.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	r.Register(admin).RegisterPublic(public).Setup()

	w := do(engine, http.MethodGet, "/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())

	w = do(engine, http.MethodGet, "/api/v1/things")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// preflights pass through the admin middleware too
	w = do(engine, http.MethodOptions, "/api/v1/things")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("posts", "/posts")
		assert.Equal(t, "posts", g.Name())
		assert.Equal(t, "/posts", g.Prefix())
	})

	t.Run("every method is mounted", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("test", "/test")
		for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions} {
			g.Handle(method, "/items", func(c *gin.Context) {
				c.String(http.StatusOK, c.Request.Method)
			})
		}
		g.RegisterRoutes(engine.Group(""))

		for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions} {
			w := do(engine, method, "/test/items")
			assert.Equal(t, http.StatusOK, w.Code, method)
			assert.Equal(t, method, w.Body.String())
		}
	})

	t.Run("middleware and subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("parent", "/parent").Use(func(c *gin.Context) {
			c.Header("X-Parent", "yes")
			c.Next()
		})
		g.Group("child", "/child").GET("/leaf", func(c *gin.Context) {
			c.String(http.StatusOK, "leaf")
		})
		g.RegisterRoutes(engine.Group("/api"))

		w := do(engine, http.MethodGet, "/api/parent/child/leaf")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "yes", w.Header().Get("X-Parent"))
	})
}

func TestJoinPaths(t *testing.T) {
	tests := []struct {
		base, rel, want string
	}{
		{"/api/v1", "", "/api/v1"},
		{"", "/posts", "/posts"},
		{"/", "/posts", "/posts"},
		{"/api/v1/", "/posts", "/api/v1/posts"},
		{"/api/v1", "/posts", "/api/v1/posts"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, joinPaths(tt.base, tt.rel), tt.base+"+"+tt.rel)
	}
}

func TestAdminGroups_RouteTable(t *testing.T) {
	var got []string
	for _, g := range AdminGroups(Handlers{
		Connect:   &handler.ConnectHandler{},
		Sync:      &handler.SyncHandler{},
		Posts:     &handler.PostsHandler{},
		Settings:  &handler.SettingsHandler{},
		Analytics: &handler.AnalyticsHandler{},
	}) {
		for _, route := range g.Routes("/api/v1") {
			got = append(got, route.Method+" "+route.Path)
		}
	}

	assert.ElementsMatch(t, []string{
		"GET /api/v1/instagram/connect",
		"GET /api/v1/instagram/account",
		"DELETE /api/v1/instagram/account",
		"POST /api/v1/instagram/sync",
		"GET /api/v1/posts",
		"GET /api/v1/posts/:mediaId",
		"PUT /api/v1/posts/:mediaId",
		"GET /api/v1/settings",
		"PUT /api/v1/settings",
		"DELETE /api/v1/settings",
		"GET /api/v1/analytics/summary",
		"GET /api/v1/analytics/posts",
	}, got)
}

// fakeSettings serves defaults for every shop
type fakeSettings struct{}

func (fakeSettings) GetSettings(context.Context, string) (integration.FeedSettings, error) {
	return integration.DefaultFeedSettings(), nil
}

func (fakeSettings) UpdateSettings(context.Context, string, []byte) (integration.FeedSettings, error) {
	return integration.DefaultFeedSettings(), nil
}

func (fakeSettings) ResetSettings(context.Context, string) error {
	return nil
}

func newMountedEngine(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:     "router-test-secret",
		Issuer:     "igfeed",
		Expiration: time.Hour,
	})
	beacon, err := handler.NewBeaconHandler("https://feed.example.com/api/track", handler.DefaultProxyPaths)
	require.NoError(t, err)

	adminCORS := middleware.DefaultCORSConfig()
	adminCORS.AllowOrigins = []string{testAdminOrigin}

	engine := gin.New()
	Mount(engine, Handlers{
		System:    handler.NewSystemHandler("igfeed", "test"),
		Connect:   handler.NewConnectHandler(nil),
		Sync:      handler.NewSyncHandler(nil),
		Posts:     handler.NewPostsHandler(nil),
		Settings:  handler.NewSettingsHandler(fakeSettings{}),
		Analytics: handler.NewAnalyticsHandler(nil),
		Tracking:  handler.NewTrackingHandler(nil),
		Webhook:   handler.NewWebhookHandler(nil, zap.NewNop()),
		Beacon:    beacon,
	}, Middleware{
		Admin: []gin.HandlerFunc{
			middleware.CORSWithConfig(adminCORS),
			middleware.AdminAuth(middleware.JWTMiddlewareConfig{Validator: jwtService}),
		},
		Webhook: []gin.HandlerFunc{middleware.WebhookSignature("webhook-secret", zap.NewNop())},
	}, telemetry.NewMetrics().Handler())
	return engine, jwtService
}

func TestMount_PublicSurface(t *testing.T) {
	engine, _ := newMountedEngine(t)

	t.Run("health", func(t *testing.T) {
		w := do(engine, http.MethodGet, "/health")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		w := do(engine, http.MethodGet, "/metrics")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("beacon", func(t *testing.T) {
		w := do(engine, http.MethodGet, "/beacon.js")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/javascript"))
	})

	t.Run("tracking preflight", func(t *testing.T) {
		w := do(engine, http.MethodOptions, "/api/track",
			"Origin", "https://acme.myshopify.com",
			"Access-Control-Request-Method", http.MethodPost)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	})

	t.Run("tracking rejects missing type without caching", func(t *testing.T) {
		w := do(engine, http.MethodGet, "/api/track?shop="+testShop, "Origin", "https://acme.myshopify.com")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"Missing type"}`, w.Body.String())
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")
	})

	t.Run("unsigned webhook", func(t *testing.T) {
		w := do(engine, http.MethodPost, "/webhooks/app-uninstalled")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestMount_AdminSurface(t *testing.T) {
	engine, jwtService := newMountedEngine(t)

	w := do(engine, http.MethodGet, "/api/v1/settings")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, _, err := jwtService.GenerateToken(testShop)
	require.NoError(t, err)

	w = do(engine, http.MethodGet, "/api/v1/settings", "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"widget_config"`)

	w = do(engine, http.MethodOptions, "/api/v1/posts/123",
		"Origin", testAdminOrigin,
		"Access-Control-Request-Method", http.MethodPut)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, testAdminOrigin, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
