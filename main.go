package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	"github.com/example/workspace-chat/modules/api"
	"github.com/example/workspace-chat/modules/auth"
	"github.com/example/workspace-chat/modules/cache"
	"github.com/example/workspace-chat/modules/chat"
	"github.com/example/workspace-chat/modules/directory"
	"github.com/example/workspace-chat/modules/realtime"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Workspace Chat ===")

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Create modules
	authModule := auth.NewModule()
	chatModule := chat.NewModule(nil)
	directoryModule := directory.NewModule()
	realtimeModule := realtime.NewModule()
	apiModule := api.NewModule()

	// Redis is optional; without it the chat module serves history uncached.
	var cacheModule *cache.Module
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		cacheModule = cache.NewModule(redisAddr)
		chatModule.SetCache(cacheModule.Cache())
	}

	// Wire collaborators. Module pointers are stable before Start; their
	// services come alive in dependency order below.
	realtimeModule.SetPersistence(chatModule, chatModule)
	realtimeModule.SetUserDirectory(authModule)
	realtimeModule.SetNotifier(chatModule)

	apiModule.SetAuth(authModule)
	apiModule.SetHistory(chatModule)
	apiModule.SetDirectory(directoryModule)
	apiModule.SetRealtime(realtimeModule)

	// Register modules in dependency order: storage-owning modules first,
	// realtime next, the HTTP surface last.
	if cacheModule != nil {
		app.Register(cacheModule)
	}
	app.Register(authModule)
	app.Register(chatModule)
	app.Register(directoryModule)
	app.Register(realtimeModule)
	app.Register(apiModule)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cacheModule != nil)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cached bool) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("Dashboard: http://localhost:%s/", port)
	log.Printf("WebSocket: ws://localhost:%s/ws", port)
	log.Println("  First frame: {\"type\":\"join\",\"user\":\"yourname\"}")
	log.Println("  Then: message, private_message, typing")
	log.Println("")
	log.Printf("REST API (http://localhost:%s/api/v1):", port)
	log.Println("  POST   /auth/register          - Create an account")
	log.Println("  POST   /auth/login             - Obtain an access token")
	log.Println("  GET    /history                - Recent room messages")
	log.Println("  POST   /messages/private       - Send a direct message (auth)")
	log.Println("  CRUD   /employees, /todos      - Workspace tools")
	log.Println("  GET    /health                 - Health check (on root)")
	log.Println("")
	if cached {
		log.Println("History cache: Redis (REDIS_ADDR set)")
	} else {
		log.Println("History cache: disabled (set REDIS_ADDR to enable)")
	}
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
