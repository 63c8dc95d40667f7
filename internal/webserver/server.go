package webserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/billzio/billzio/internal/app"
)

var server *WebServer

type WebServer struct {
	root   *echo.Echo
	api    *echo.Group
	appCtx app.AppContext
}

// Init creates the web server and installs the common middleware stack.
// API routes registered through ApiGET etc. require a valid JWT.
func Init(appCtx app.AppContext) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			zap.L().Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Inject application context for handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("appCtx", appCtx)
			return next(c)
		}
	})

	api := e.Group("/api/v1")
	api.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(appCtx.Config().Web.JwtSecret),
		TokenLookup: "header:Authorization:Bearer ,query:token",
	}))

	server = &WebServer{root: e, api: api, appCtx: appCtx}
	return server
}

// Listen starts the HTTP listener and blocks
func (s *WebServer) Listen() error {
	cfg := s.appCtx.Config()
	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	zap.S().Infof("starting web server on %s", addr)
	s.root.Server.ReadTimeout = 30 * time.Second
	s.root.Server.WriteTimeout = 60 * time.Second
	return s.root.Start(addr)
}

// Shutdown gracefully stops the HTTP listener
func (s *WebServer) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.root.Shutdown(ctx)
}

// Echo exposes the underlying echo instance (used in tests)
func (s *WebServer) Echo() *echo.Echo {
	return s.root
}

func checkInit() {
	if server == nil {
		panic("webserver not initialized")
	}
}

// PubGET registers an unauthenticated GET route
func PubGET(path string, h echo.HandlerFunc) {
	checkInit()
	server.root.GET(path, h)
}

// PubPOST registers an unauthenticated POST route
func PubPOST(path string, h echo.HandlerFunc) {
	checkInit()
	server.root.POST(path, h)
}

// ApiGET registers a JWT protected GET route under /api/v1
func ApiGET(path string, h echo.HandlerFunc) {
	checkInit()
	server.api.GET(path, h)
}

// ApiPOST registers a JWT protected POST route under /api/v1
func ApiPOST(path string, h echo.HandlerFunc) {
	checkInit()
	server.api.POST(path, h)
}

// ApiPUT registers a JWT protected PUT route under /api/v1
func ApiPUT(path string, h echo.HandlerFunc) {
	checkInit()
	server.api.PUT(path, h)
}

// ApiDELETE registers a JWT protected DELETE route under /api/v1
func ApiDELETE(path string, h echo.HandlerFunc) {
	checkInit()
	server.api.DELETE(path, h)
}

// Health endpoint used by load balancer probes
func RegisterHealth() {
	checkInit()
	server.root.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}
