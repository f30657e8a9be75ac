package directory

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	domain "github.com/example/workspace-chat/domain/directory"
)

var (
	// ErrEmployeeNotFound is returned when no employee matches the name.
	ErrEmployeeNotFound = errors.New("employee not found")
	// ErrEmployeeExists is returned on a duplicate employee name.
	ErrEmployeeExists = errors.New("employee with this name already exists")
	// ErrTodoNotFound is returned when no todo matches the id.
	ErrTodoNotFound = errors.New("todo not found")
)

// EmployeeRepository provides access to employee storage.
type EmployeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository creates a new employee repository.
func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create saves a new employee.
func (r *EmployeeRepository) Create(employee *domain.Employee) error {
	if err := r.db.Create(employee).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrEmployeeExists
		}
		return fmt.Errorf("failed to create employee: %w", err)
	}
	return nil
}

// FindByName retrieves an employee by name.
func (r *EmployeeRepository) FindByName(name string) (*domain.Employee, error) {
	var employee domain.Employee
	if err := r.db.First(&employee, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to find employee: %w", err)
	}
	return &employee, nil
}

// FindAll retrieves every employee.
func (r *EmployeeRepository) FindAll() ([]domain.Employee, error) {
	var employees []domain.Employee
	if err := r.db.Order("name").Find(&employees).Error; err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, nil
}

// NameExists checks for an employee with the given name, excluding the record
// with excludeID. Pass an empty excludeID for create checks.
func (r *EmployeeRepository) NameExists(name, excludeID string) (bool, error) {
	var count int64
	query := r.db.Model(&domain.Employee{}).Where("name = ?", name)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check employee name: %w", err)
	}
	return count > 0, nil
}

// Save persists changes to an existing employee.
func (r *EmployeeRepository) Save(employee *domain.Employee) error {
	if err := r.db.Save(employee).Error; err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}
	return nil
}

// DeleteByName removes an employee by name.
func (r *EmployeeRepository) DeleteByName(name string) error {
	result := r.db.Delete(&domain.Employee{}, "name = ?", name)
	if result.Error != nil {
		return fmt.Errorf("failed to delete employee: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

// DeleteAll removes every employee and returns how many were deleted.
func (r *EmployeeRepository) DeleteAll() (int64, error) {
	result := r.db.Where("1 = 1").Delete(&domain.Employee{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete employees: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// TodoRepository provides access to todo storage.
type TodoRepository struct {
	db *gorm.DB
}

// NewTodoRepository creates a new todo repository.
func NewTodoRepository(db *gorm.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

// Create saves a new todo.
func (r *TodoRepository) Create(todo *domain.Todo) error {
	if err := r.db.Create(todo).Error; err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}
	return nil
}

// FindByID retrieves a todo by id.
func (r *TodoRepository) FindByID(id string) (*domain.Todo, error) {
	var todo domain.Todo
	if err := r.db.First(&todo, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}
	return &todo, nil
}

// FindAll retrieves every todo, newest first.
func (r *TodoRepository) FindAll() ([]domain.Todo, error) {
	var todos []domain.Todo
	if err := r.db.Order("created_at DESC").Find(&todos).Error; err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// Save persists changes to an existing todo.
func (r *TodoRepository) Save(todo *domain.Todo) error {
	if err := r.db.Save(todo).Error; err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}
	return nil
}

// DeleteByID removes a todo by id.
func (r *TodoRepository) DeleteByID(id string) error {
	result := r.db.Delete(&domain.Todo{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete todo: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTodoNotFound
	}
	return nil
}

// DeleteAll removes every todo and returns how many were deleted.
func (r *TodoRepository) DeleteAll() (int64, error) {
	result := r.db.Where("1 = 1").Delete(&domain.Todo{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete todos: %w", result.Error)
	}
	return result.RowsAffected, nil
}
