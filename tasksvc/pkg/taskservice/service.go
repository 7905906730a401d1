package taskservice

import (
	"context"

	"github.com/go-kit/kit/log"
	"github.com/taskpad/backend/tasksvc"
)

// Service implements the task lifecycle. Tasks are not scoped to the caller:
// any verified identity may list, create, update, or delete any task.
type Service interface {
	Tasks(ctx context.Context) ([]tasksvc.Task, error)
	CreateTask(ctx context.Context, text string) (tasksvc.Task, error)
	UpdateTask(ctx context.Context, taskID uint64, patch tasksvc.TaskPatch) (tasksvc.Task, error)
	DeleteTask(ctx context.Context, taskID uint64) (bool, error)
}

func New(t tasksvc.TaskRepository, logger log.Logger) Service {
	var svc Service
	{
		svc = NewBasicService(t)
		svc = LoggingMiddleware(logger)(svc)
	}
	return svc
}

type basicService struct {
	tasks tasksvc.TaskRepository
}

func NewBasicService(t tasksvc.TaskRepository) Service {
	return basicService{tasks: t}
}

func (s basicService) Tasks(_ context.Context) ([]tasksvc.Task, error) {
	return s.tasks.FindAll()
}

func (s basicService) CreateTask(_ context.Context, text string) (tasksvc.Task, error) {
	if text == "" {
		return tasksvc.Task{}, tasksvc.ErrInvalidArgument
	}
	return s.tasks.Create(text)
}

func (s basicService) UpdateTask(_ context.Context, taskID uint64, patch tasksvc.TaskPatch) (tasksvc.Task, error) {
	if taskID == 0 {
		return tasksvc.Task{}, tasksvc.ErrInvalidArgument
	}
	if patch.Text != nil && *patch.Text == "" {
		return tasksvc.Task{}, tasksvc.ErrInvalidArgument
	}
	return s.tasks.Update(taskID, patch)
}

func (s basicService) DeleteTask(_ context.Context, taskID uint64) (bool, error) {
	if taskID == 0 {
		return false, tasksvc.ErrInvalidArgument
	}
	return s.tasks.Delete(taskID)
}
