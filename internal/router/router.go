package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dormdigest/internal/handler"
	"dormdigest/internal/middleware"
	"dormdigest/internal/service"
)

// Deps carries everything the routes need.
type Deps struct {
	DB             *gorm.DB
	Log            *zap.Logger
	Users          *service.UserService
	Clubs          *service.ClubService
	Events         *service.EventService
	Sessions       *service.SessionService
	SessionMaxAge  time.Duration
	FeedDomain     string
	DisableMetrics bool
}

func InitRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(d.Log))
	if !d.DisableMetrics {
		r.Use(middleware.Metrics())
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	user := handler.NewUserHandler(d.Users, d.Sessions)
	club := handler.NewClubHandler(d.Clubs, d.Users)
	event := handler.NewEventHandler(d.Events, d.Users, d.FeedDomain)

	auth := middleware.SessionAuth(d.Sessions, d.Users, d.SessionMaxAge)
	admin := middleware.RequireAdmin(d.Users)

	// session endpoints
	sessionGroup := r.Group("/api/session")
	{
		sessionGroup.POST("", user.Login)
		sessionGroup.DELETE("", auth, user.Logout)
	}

	// public feed
	r.GET("/api/events/feed.ics", event.Calendar)

	eventGroup := r.Group("/api/events")
	eventGroup.Use(auth)
	{
		eventGroup.GET("", event.List)
		eventGroup.POST("", event.Create)
		eventGroup.GET("/:id", event.Get)
		eventGroup.GET("/:id/serialized", event.Serialized)
		eventGroup.POST("/:id/approve", event.Approve)
		eventGroup.DELETE("/:id", event.Delete)
	}

	clubGroup := r.Group("/api/clubs")
	clubGroup.Use(auth)
	{
		clubGroup.GET("", club.List)
		clubGroup.POST("", admin, club.Create)
		clubGroup.GET("/:id", club.Get)
		clubGroup.GET("/:id/members", club.Members)
		clubGroup.POST("/:id/members", club.AddMember)
		clubGroup.DELETE("/:id/members", club.Leave)
	}

	userGroup := r.Group("/api/users")
	userGroup.Use(auth)
	{
		userGroup.GET("/me", user.Me)
		userGroup.GET("/me/clubs", club.Mine)
		userGroup.PUT("/:id/privilege", user.SetPrivilege)
	}

	return r
}
