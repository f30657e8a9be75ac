package directory

import "time"

// Gender enumerates the accepted employee gender values.
type Gender string

// Accepted Gender values.
const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Valid reports whether g is one of the accepted values.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Priority enumerates todo priorities.
type Priority string

// Accepted Priority values.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the accepted values.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Status enumerates todo statuses.
type Status string

// Accepted Status values.
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is one of the accepted values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Employee represents an employee record, keyed by name for API lookups.
type Employee struct {
	ID      string `gorm:"primarykey;size:36" json:"-"`
	Name    string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Surname string `gorm:"size:100;not null" json:"surname"`
	Age     int    `gorm:"not null" json:"age"`
	Gender  Gender `gorm:"size:10;not null" json:"gender"`
}

// TableName returns the table name for Employee.
func (Employee) TableName() string {
	return "employees"
}

// Todo represents a todo item.
type Todo struct {
	ID          string    `gorm:"primarykey;size:36" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"size:1000" json:"description,omitempty"`
	Priority    Priority  `gorm:"size:10;not null;default:medium" json:"priority"`
	Status      Status    `gorm:"size:15;not null;default:pending" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the table name for Todo.
func (Todo) TableName() string {
	return "todos"
}
