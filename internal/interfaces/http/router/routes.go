package router

import (
	"net/http"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/interfaces/http/handler"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers holds every handler the HTTP surface mounts
type Handlers struct {
	System    *handler.SystemHandler
	Connect   *handler.ConnectHandler
	Sync      *handler.SyncHandler
	Posts     *handler.PostsHandler
	Settings  *handler.SettingsHandler
	Analytics *handler.AnalyticsHandler
	Tracking  *handler.TrackingHandler
	Webhook   *handler.WebhookHandler
	Beacon    *handler.BeaconHandler
}

// Middleware holds the per-surface middleware chains
type Middleware struct {
	// Admin runs before every /api/<version> route; CORS precedes authentication so preflights pass
	Admin []gin.HandlerFunc
	// Tracking runs after CORS on the public tracking endpoint
	Tracking []gin.HandlerFunc
	// Webhook runs before lifecycle webhooks; signature verification goes here
	Webhook []gin.HandlerFunc
}

// Mount registers the full HTTP surface on engine.
// metrics may be nil when metrics are disabled.
func Mount(engine *gin.Engine, h Handlers, mw Middleware, metrics http.Handler) *Router {
	r := NewRouter(engine, WithAdminMiddleware(mw.Admin...))
	for _, g := range PublicGroups(h, mw, metrics) {
		r.RegisterPublic(g)
	}
	for _, g := range AdminGroups(h) {
		r.Register(g)
	}
	r.Setup()
	return r
}

// PublicGroups returns the unauthenticated routes
func PublicGroups(h Handlers, mw Middleware, metrics http.Handler) []*DomainGroup {
	system := NewDomainGroup("system", "")
	system.GET("/health", h.System.Health)
	system.GET("/info", h.System.GetSystemInfo)
	if metrics != nil {
		system.GET("/metrics", gin.WrapH(metrics))
	}
	system.GET("/beacon.js", h.Beacon.Serve)

	tracking := NewDomainGroup("tracking", "/api").
		Use(middleware.CORSWithConfig(middleware.PublicCORSConfig()), middleware.NoCache()).
		Use(mw.Tracking...)
	tracking.GET("/track", h.Tracking.Track)
	tracking.POST("/track", h.Tracking.Track)
	tracking.OPTIONS("/track", noContent)

	oauth := NewDomainGroup("oauth", "/auth/instagram")
	oauth.GET("/callback", h.Connect.Callback)

	webhooks := NewDomainGroup("webhooks", "/webhooks").Use(mw.Webhook...)
	webhooks.POST("/:topic", h.Webhook.Receive)

	return []*DomainGroup{system, tracking, oauth, webhooks}
}

// AdminGroups returns the routes served under /api/<version>
func AdminGroups(h Handlers) []*DomainGroup {
	instagram := NewDomainGroup("instagram", "/instagram")
	instagram.GET("/connect", h.Connect.Connect)
	instagram.GET("/account", h.Connect.GetAccount)
	instagram.DELETE("/account", h.Connect.Disconnect)
	instagram.POST("/sync", h.Sync.Sync)

	posts := NewDomainGroup("posts", "/posts")
	posts.GET("", h.Posts.List)
	posts.GET("/:mediaId", h.Posts.Get)
	posts.PUT("/:mediaId", h.Posts.Update)

	settings := NewDomainGroup("settings", "/settings")
	settings.GET("", h.Settings.Get)
	settings.PUT("", h.Settings.Update)
	settings.DELETE("", h.Settings.Reset)

	analytics := NewDomainGroup("analytics", "/analytics")
	analytics.GET("/summary", h.Analytics.Summary)
	analytics.GET("/posts", h.Analytics.TopPosts)

	return []*DomainGroup{instagram, posts, settings, analytics}
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
