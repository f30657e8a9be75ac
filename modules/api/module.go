// Package api is the HTTP and WebSocket transport. It owns the fiber app,
// routes, and middleware, and drives realtime sessions for upgraded
// connections.
package api

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-monolith/mono"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/workspace-chat/modules/auth"
	"github.com/example/workspace-chat/modules/directory"
	"github.com/example/workspace-chat/modules/realtime"
)

// APIModule is the HTTP API module with WebSocket support.
type APIModule struct {
	app       *fiber.App
	port      string
	staticDir string

	authModule *auth.AuthModule
	dirModule  *directory.DirectoryModule

	// resolved from the modules in Start, after their own Start ran
	auth      *auth.AuthService
	directory *directory.Service

	history  realtime.HistorySource
	realtime *realtime.Module
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule.
func NewModule() *APIModule {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "./static"
	}
	return &APIModule{
		port:      port,
		staticDir: staticDir,
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// SetAuth wires the auth module (called from main.go). The service itself is
// resolved in Start, once the auth module has opened its database.
func (m *APIModule) SetAuth(module *auth.AuthModule) {
	m.authModule = module
}

// SetHistory wires the history source (called from main.go).
func (m *APIModule) SetHistory(history realtime.HistorySource) {
	m.history = history
}

// SetDirectory wires the directory module (called from main.go).
func (m *APIModule) SetDirectory(module *directory.DirectoryModule) {
	m.dirModule = module
}

// SetRealtime wires the realtime module (called from main.go).
func (m *APIModule) SetRealtime(rt *realtime.Module) {
	m.realtime = rt
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.authModule == nil {
		return fmt.Errorf("api: auth module dependency not set")
	}
	if m.history == nil {
		return fmt.Errorf("api: history source dependency not set")
	}
	if m.dirModule == nil {
		return fmt.Errorf("api: directory module dependency not set")
	}
	if m.realtime == nil {
		return fmt.Errorf("api: realtime module dependency not set")
	}

	m.auth = m.authModule.Service()
	m.directory = m.dirModule.Service()
	if m.auth == nil || m.directory == nil {
		return fmt.Errorf("api: dependency modules not started")
	}

	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
		IdleTimeout:           120 * time.Second,
	})

	m.app.Use(recover.New())
	m.app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins(),
	}))
	m.app.Use(requestLogger())

	m.setupRoutes()

	go func() {
		if err := m.app.Listen(":" + m.port); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on :%s", m.port)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port":              m.port,
			"connected_clients": m.realtime.Registry().Len(),
		},
	}
}

// setupRoutes registers every route on the app.
func (m *APIModule) setupRoutes() {
	// Static dashboard
	m.app.Static("/", m.staticDir)

	// WebSocket upgrade middleware
	m.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	m.app.Get("/ws", websocket.New(m.handleWebSocket))

	m.app.Get("/health", m.handleHealth)

	api := m.app.Group("/api/v1")

	api.Post("/auth/register", m.handleRegister)
	api.Post("/auth/login", m.handleLogin)

	api.Get("/history", m.handleHistory)

	protected := api.Group("", AuthMiddleware(m.auth))
	protected.Post("/messages/private", m.handlePrivateMessage)

	// deleteAll routes must precede the parameterized ones
	api.Get("/employees", m.handleListEmployees)
	api.Post("/employees", m.handleCreateEmployee)
	api.Delete("/employees/deleteAll", m.handleDeleteAllEmployees)
	api.Get("/employees/:name", m.handleGetEmployee)
	api.Patch("/employees/:name", m.handleUpdateEmployee)
	api.Delete("/employees/:name", m.handleDeleteEmployee)

	api.Get("/todos", m.handleListTodos)
	api.Post("/todos", m.handleCreateTodo)
	api.Delete("/todos/deleteAll", m.handleDeleteAllTodos)
	api.Get("/todos/:id", m.handleGetTodo)
	api.Patch("/todos/:id", m.handleUpdateTodo)
	api.Delete("/todos/:id", m.handleDeleteTodo)
}

// errorHandler handles Fiber errors.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}

// requestLogger returns a Fiber middleware for request logging.
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Skip logging for WebSocket upgrade requests
		if c.Get("Upgrade") == "websocket" {
			return c.Next()
		}
		err := c.Next()
		log.Printf("[api] %s %s %d", c.Method(), c.Path(), c.Response().StatusCode())
		return err
	}
}

// corsOrigins reads the allowed origins from the environment.
func corsOrigins() string {
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		return origins
	}
	return "*"
}
