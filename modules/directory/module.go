// Package directory provides the employee and todo CRUD services backing the
// workspace tools surface of the API.
package directory

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-monolith/mono"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	domain "github.com/example/workspace-chat/domain/directory"
)

// DirectoryModule owns the employee/todo database and service.
type DirectoryModule struct {
	db      *gorm.DB
	service *Service
	dbPath  string
}

// Compile-time interface checks.
var _ mono.Module = (*DirectoryModule)(nil)
var _ mono.HealthCheckableModule = (*DirectoryModule)(nil)

// NewModule creates a new DirectoryModule. The database path comes from
// DIRECTORY_DB_PATH, defaulting to workspace_directory.db.
func NewModule() *DirectoryModule {
	dbPath := os.Getenv("DIRECTORY_DB_PATH")
	if dbPath == "" {
		dbPath = "workspace_directory.db"
	}
	return &DirectoryModule{dbPath: dbPath}
}

// Name returns the module name.
func (m *DirectoryModule) Name() string {
	return "directory"
}

// Start opens the database and builds the service.
func (m *DirectoryModule) Start(_ context.Context) error {
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := db.AutoMigrate(&domain.Employee{}, &domain.Todo{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	m.service = NewService(NewEmployeeRepository(db), NewTodoRepository(db))

	log.Printf("[directory] Module started (database: %s)", m.dbPath)
	return nil
}

// Stop closes the database connection.
func (m *DirectoryModule) Stop(_ context.Context) error {
	if m.db != nil {
		if sqlDB, err := m.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[directory] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *DirectoryModule) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get database connection: %v", err),
		}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.dbPath,
		},
	}
}

// Service returns the directory service. Nil before Start.
func (m *DirectoryModule) Service() *Service {
	return m.service
}
