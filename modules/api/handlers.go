package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/workspace-chat/modules/auth"
	"github.com/example/workspace-chat/modules/directory"
)

// Auth handlers

// handleRegister creates a new account (POST /api/v1/auth/register).
func (m *APIModule) handleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := m.auth.Register(c.UserContext(), req.Username, req.DisplayName, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
				Error:   "conflict",
				Message: err.Error(),
			})
		case errors.Is(err, auth.ErrInvalidUsername),
			errors.Is(err, auth.ErrWeakPassword),
			errors.Is(err, auth.ErrPasswordTooLong):
			return badRequest(c, err.Error())
		default:
			return fiber.ErrInternalServerError
		}
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// handleLogin authenticates a user (POST /api/v1/auth/login).
func (m *APIModule) handleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	pair, err := m.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: err.Error(),
			})
		}
		return fiber.ErrInternalServerError
	}
	return c.JSON(pair)
}

// Chat handlers

// handleHistory returns recent room history (GET /api/v1/history).
func (m *APIModule) handleHistory(c *fiber.Ctx) error {
	room := c.Query("room", "")
	limit := c.QueryInt("limit", 0)

	messages, err := m.history.RecentMessages(c.UserContext(), room, limit)
	if err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(fiber.Map{
		"messages": messages,
		"total":    len(messages),
	})
}

// handlePrivateMessage routes a direct message from the authenticated user
// (POST /api/v1/messages/private).
func (m *APIModule) handlePrivateMessage(c *fiber.Ctx) error {
	claims := claimsFromContext(c)
	if claims == nil {
		return fiber.ErrUnauthorized
	}

	var req PrivateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Receiver == "" || req.Message == "" {
		return badRequest(c, "receiver and message are required")
	}

	delivered, err := m.realtime.Router().Route(c.UserContext(), claims.Username, req.Receiver, req.Message)
	if err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(PrivateMessageResponse{Delivered: delivered})
}

// Employee handlers

// handleListEmployees returns every employee (GET /api/v1/employees).
func (m *APIModule) handleListEmployees(c *fiber.Ctx) error {
	employees, err := m.directory.ListEmployees()
	if err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(fiber.Map{
		"message": "Employees retrieved successfully",
		"count":   len(employees),
		"data":    employees,
	})
}

// handleGetEmployee returns one employee by name (GET /api/v1/employees/:name).
func (m *APIModule) handleGetEmployee(c *fiber.Ctx) error {
	employee, err := m.directory.GetEmployee(c.Params("name"))
	if err != nil {
		return directoryError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Employee retrieved successfully",
		"data":    employee,
	})
}

// handleCreateEmployee stores a new employee (POST /api/v1/employees).
func (m *APIModule) handleCreateEmployee(c *fiber.Ctx) error {
	var input directory.EmployeeInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid request body")
	}

	employee, err := m.directory.CreateEmployee(input)
	if err != nil {
		return directoryError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Employee created successfully",
		"data":    employee,
	})
}

// handleUpdateEmployee applies a partial update (PATCH /api/v1/employees/:name).
func (m *APIModule) handleUpdateEmployee(c *fiber.Ctx) error {
	var patch directory.EmployeePatch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest(c, "Invalid request body")
	}

	employee, err := m.directory.UpdateEmployee(c.Params("name"), patch)
	if err != nil {
		return directoryError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Employee updated successfully",
		"data":    employee,
	})
}

// handleDeleteEmployee removes one employee (DELETE /api/v1/employees/:name).
func (m *APIModule) handleDeleteEmployee(c *fiber.Ctx) error {
	if err := m.directory.DeleteEmployee(c.Params("name")); err != nil {
		return directoryError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Employee deleted successfully",
	})
}

// handleDeleteAllEmployees removes every employee (DELETE /api/v1/employees/deleteAll).
func (m *APIModule) handleDeleteAllEmployees(c *fiber.Ctx) error {
	count, err := m.directory.DeleteAllEmployees()
	if err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(fiber.Map{
		"message": "All employees deleted successfully",
		"count":   count,
	})
}

// Todo handlers

// handleListTodos returns every todo (GET /api/v1/todos).
func (m *APIModule) handleListTodos(c *fiber.Ctx) error {
	todos, err := m.directory.ListTodos()
	if err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(fiber.Map{
		"message": "Todos retrieved successfully",
		"count":   len(todos),
		"data":    todos,
	})
}

// handleGetTodo returns one todo by id (GET /api/v1/todos/:id).
func (m *APIModule) handleGetTodo(c *fiber.Ctx) error {
	todo, err := m.directory.GetTodo(c.Params("id"))
	if err != nil {
		return directoryError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Todo retrieved successfully",
		"data":    todo,
	})
}

// handleCreateTodo stores a new todo (POST /api/v1/todos).
func (m *APIModule) handleCreateTodo(c *fiber.Ctx) error {
	var input directory.TodoInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid request body")
	}

	todo, err := m.directory.CreateTodo(input)
	if err != nil {
		return directoryError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Todo created successfully",
		"data":    todo,
	})
}

// handleUpdateTodo applies a partial update (PATCH /api/v1/todos/:id).
func (m *APIModule) handleUpdateTodo(c *fiber.Ctx) error {
	var patch directory.TodoPatch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest(c, "Invalid request body")
	}

	todo, err := m.directory.UpdateTodo(c.Params("id"), patch)
	if err != nil {
		return directoryError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Todo updated successfully",
		"data":    todo,
	})
}

// handleDeleteTodo removes one todo (DELETE /api/v1/todos/:id).
func (m *APIModule) handleDeleteTodo(c *fiber.Ctx) error {
	if err := m.directory.DeleteTodo(c.Params("id")); err != nil {
		return directoryError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Todo deleted successfully",
	})
}

// handleDeleteAllTodos removes every todo (DELETE /api/v1/todos/deleteAll).
func (m *APIModule) handleDeleteAllTodos(c *fiber.Ctx) error {
	count, err := m.directory.DeleteAllTodos()
	if err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(fiber.Map{
		"message": "All todos deleted successfully",
		"count":   count,
	})
}

// Health handler

// handleHealth reports service status (GET /health).
func (m *APIModule) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":            "healthy",
		"service":           "workspace-chat",
		"connected_clients": m.realtime.Registry().Len(),
		"online_users":      m.realtime.Registry().UserCount(),
	})
}

// Helpers

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

// directoryError maps directory service errors onto HTTP statuses.
func directoryError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, directory.ErrEmployeeNotFound),
		errors.Is(err, directory.ErrTodoNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, directory.ErrEmployeeExists):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "conflict",
			Message: err.Error(),
		})
	case errors.Is(err, directory.ErrValidation):
		return badRequest(c, err.Error())
	default:
		return fiber.ErrInternalServerError
	}
}
