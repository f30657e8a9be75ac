package directory

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	domain "github.com/example/workspace-chat/domain/directory"
)

var (
	// ErrValidation wraps the field-level validation failures below.
	ErrValidation = errors.New("validation failed")
)

// EmployeeInput carries the fields of a create request.
type EmployeeInput struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Age     int    `json:"age"`
	Gender  string `json:"gender"`
}

// EmployeePatch carries the fields of a partial update. Nil fields are left
// untouched.
type EmployeePatch struct {
	Name    *string `json:"name"`
	Surname *string `json:"surname"`
	Age     *int    `json:"age"`
	Gender  *string `json:"gender"`
}

// TodoInput carries the fields of a create request.
type TodoInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

// TodoPatch carries the fields of a partial update. Nil fields are left
// untouched.
type TodoPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
}

// Service implements employee and todo operations with validation.
type Service struct {
	employees *EmployeeRepository
	todos     *TodoRepository
}

// NewService creates a directory service.
func NewService(employees *EmployeeRepository, todos *TodoRepository) *Service {
	return &Service{employees: employees, todos: todos}
}

// Employees

// CreateEmployee validates and stores a new employee.
func (s *Service) CreateEmployee(input EmployeeInput) (*domain.Employee, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Surname = strings.TrimSpace(input.Surname)
	if err := validateEmployee(input.Name, input.Surname, input.Age, domain.Gender(input.Gender)); err != nil {
		return nil, err
	}

	employee := &domain.Employee{
		ID:      uuid.New().String(),
		Name:    input.Name,
		Surname: input.Surname,
		Age:     input.Age,
		Gender:  domain.Gender(input.Gender),
	}
	if err := s.employees.Create(employee); err != nil {
		return nil, err
	}
	return employee, nil
}

// GetEmployee retrieves an employee by name.
func (s *Service) GetEmployee(name string) (*domain.Employee, error) {
	return s.employees.FindByName(name)
}

// ListEmployees returns every employee ordered by name.
func (s *Service) ListEmployees() ([]domain.Employee, error) {
	return s.employees.FindAll()
}

// UpdateEmployee applies a partial update to the employee with the given
// name. A name change is rejected when it collides with another employee.
func (s *Service) UpdateEmployee(name string, patch EmployeePatch) (*domain.Employee, error) {
	employee, err := s.employees.FindByName(name)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		newName := strings.TrimSpace(*patch.Name)
		if newName != employee.Name {
			taken, err := s.employees.NameExists(newName, employee.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrEmployeeExists
			}
		}
		employee.Name = newName
	}
	if patch.Surname != nil {
		employee.Surname = strings.TrimSpace(*patch.Surname)
	}
	if patch.Age != nil {
		employee.Age = *patch.Age
	}
	if patch.Gender != nil {
		employee.Gender = domain.Gender(*patch.Gender)
	}

	if err := validateEmployee(employee.Name, employee.Surname, employee.Age, employee.Gender); err != nil {
		return nil, err
	}
	if err := s.employees.Save(employee); err != nil {
		return nil, err
	}
	return employee, nil
}

// DeleteEmployee removes an employee by name.
func (s *Service) DeleteEmployee(name string) error {
	return s.employees.DeleteByName(name)
}

// DeleteAllEmployees removes every employee and returns the count.
func (s *Service) DeleteAllEmployees() (int64, error) {
	return s.employees.DeleteAll()
}

// Todos

// CreateTodo validates and stores a new todo. Priority defaults to medium
// and status to pending.
func (s *Service) CreateTodo(input TodoInput) (*domain.Todo, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Priority == "" {
		input.Priority = string(domain.PriorityMedium)
	}
	if input.Status == "" {
		input.Status = string(domain.StatusPending)
	}
	if err := validateTodo(input.Title, input.Description, domain.Priority(input.Priority), domain.Status(input.Status)); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	todo := &domain.Todo{
		ID:          uuid.New().String(),
		Title:       input.Title,
		Description: input.Description,
		Priority:    domain.Priority(input.Priority),
		Status:      domain.Status(input.Status),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.todos.Create(todo); err != nil {
		return nil, err
	}
	return todo, nil
}

// GetTodo retrieves a todo by id.
func (s *Service) GetTodo(id string) (*domain.Todo, error) {
	return s.todos.FindByID(id)
}

// ListTodos returns every todo, newest first.
func (s *Service) ListTodos() ([]domain.Todo, error) {
	return s.todos.FindAll()
}

// UpdateTodo applies a partial update to the todo with the given id.
func (s *Service) UpdateTodo(id string, patch TodoPatch) (*domain.Todo, error) {
	todo, err := s.todos.FindByID(id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		todo.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		todo.Description = *patch.Description
	}
	if patch.Priority != nil {
		todo.Priority = domain.Priority(*patch.Priority)
	}
	if patch.Status != nil {
		todo.Status = domain.Status(*patch.Status)
	}

	if err := validateTodo(todo.Title, todo.Description, todo.Priority, todo.Status); err != nil {
		return nil, err
	}
	todo.UpdatedAt = time.Now().UTC()
	if err := s.todos.Save(todo); err != nil {
		return nil, err
	}
	return todo, nil
}

// DeleteTodo removes a todo by id.
func (s *Service) DeleteTodo(id string) error {
	return s.todos.DeleteByID(id)
}

// DeleteAllTodos removes every todo and returns the count.
func (s *Service) DeleteAllTodos() (int64, error) {
	return s.todos.DeleteAll()
}

func validateEmployee(name, surname string, age int, gender domain.Gender) error {
	if name == "" || len(name) > 100 {
		return fmt.Errorf("%w: name must be 1-100 characters", ErrValidation)
	}
	if surname == "" || len(surname) > 100 {
		return fmt.Errorf("%w: surname must be 1-100 characters", ErrValidation)
	}
	if age < 16 || age > 120 {
		return fmt.Errorf("%w: age must be between 16 and 120", ErrValidation)
	}
	if !gender.Valid() {
		return fmt.Errorf("%w: gender must be male, female, or other", ErrValidation)
	}
	return nil
}

func validateTodo(title, description string, priority domain.Priority, status domain.Status) error {
	if title == "" || len(title) > 200 {
		return fmt.Errorf("%w: title must be 1-200 characters", ErrValidation)
	}
	if len(description) > 1000 {
		return fmt.Errorf("%w: description must be at most 1000 characters", ErrValidation)
	}
	if !priority.Valid() {
		return fmt.Errorf("%w: priority must be low, medium, or high", ErrValidation)
	}
	if !status.Valid() {
		return fmt.Errorf("%w: status must be pending, in_progress, or completed", ErrValidation)
	}
	return nil
}
