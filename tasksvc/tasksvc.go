package tasksvc

import (
	"errors"
	"time"
)

type Task struct {
	ID        uint64    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// TaskPatch carries a partial update. Nil fields are left untouched.
type TaskPatch struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

type TaskRepository interface {
	Create(text string) (Task, error)
	FindAll() ([]Task, error)
	Update(taskID uint64, patch TaskPatch) (Task, error)
	Delete(taskID uint64) (bool, error)
}

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrTaskNotFound    = errors.New("task not found")
)
