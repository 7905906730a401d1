package taskendpoint

import (
	"context"
	"net/http"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/taskpad/backend/authsvc"
	"github.com/taskpad/backend/tasksvc"
	"github.com/taskpad/backend/tasksvc/pkg/taskservice"
)

type Set struct {
	TasksEndpoint      endpoint.Endpoint
	CreateTaskEndpoint endpoint.Endpoint
	UpdateTaskEndpoint endpoint.Endpoint
	DeleteTaskEndpoint endpoint.Endpoint
}

func New(svc taskservice.Service, logger log.Logger) Set {
	var tasksEndpoint endpoint.Endpoint
	{
		tasksEndpoint = MakeTasksEndpoint(svc)
		tasksEndpoint = LoggingMiddleware(log.With(logger, "method", "Tasks"))(tasksEndpoint)
	}

	var createTaskEndpoint endpoint.Endpoint
	{
		createTaskEndpoint = MakeCreateTaskEndpoint(svc)
		createTaskEndpoint = LoggingMiddleware(log.With(logger, "method", "CreateTask"))(createTaskEndpoint)
	}

	var updateTaskEndpoint endpoint.Endpoint
	{
		updateTaskEndpoint = MakeUpdateTaskEndpoint(svc)
		updateTaskEndpoint = LoggingMiddleware(log.With(logger, "method", "UpdateTask"))(updateTaskEndpoint)
	}

	var deleteTaskEndpoint endpoint.Endpoint
	{
		deleteTaskEndpoint = MakeDeleteTaskEndpoint(svc)
		deleteTaskEndpoint = LoggingMiddleware(log.With(logger, "method", "DeleteTask"))(deleteTaskEndpoint)
	}

	return Set{
		TasksEndpoint:      tasksEndpoint,
		CreateTaskEndpoint: createTaskEndpoint,
		UpdateTaskEndpoint: updateTaskEndpoint,
		DeleteTaskEndpoint: deleteTaskEndpoint,
	}
}

func (s Set) Tasks(ctx context.Context) ([]tasksvc.Task, error) {
	response, err := s.TasksEndpoint(ctx, TasksRequest{})
	if err != nil {
		return nil, err
	}

	resp := response.(TasksResponse)
	return resp.Tasks, resp.Err
}

func (s Set) CreateTask(ctx context.Context, text string) (tasksvc.Task, error) {
	response, err := s.CreateTaskEndpoint(ctx, CreateTaskRequest{Text: text})
	if err != nil {
		return tasksvc.Task{}, err
	}

	resp := response.(CreateTaskResponse)
	return resp.Task, resp.Err
}

func (s Set) UpdateTask(ctx context.Context, taskID uint64, patch tasksvc.TaskPatch) (tasksvc.Task, error) {
	response, err := s.UpdateTaskEndpoint(ctx, UpdateTaskRequest{TaskID: taskID, Patch: patch})
	if err != nil {
		return tasksvc.Task{}, err
	}

	resp := response.(UpdateTaskResponse)
	return resp.Task, resp.Err
}

func (s Set) DeleteTask(ctx context.Context, taskID uint64) (bool, error) {
	response, err := s.DeleteTaskEndpoint(ctx, DeleteTaskRequest{TaskID: taskID})
	if err != nil {
		return false, err
	}

	resp := response.(DeleteTaskResponse)
	return resp.Deleted, resp.Err
}

func MakeTasksEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		if _, err := identityFrom(ctx); err != nil {
			return TasksResponse{Err: err}, nil
		}

		_ = request.(TasksRequest)
		t, err := s.Tasks(ctx)
		return TasksResponse{Tasks: t, Err: err}, nil
	}
}

func MakeCreateTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		if _, err := identityFrom(ctx); err != nil {
			return CreateTaskResponse{Err: err}, nil
		}

		req := request.(CreateTaskRequest)
		t, err := s.CreateTask(ctx, req.Text)
		return CreateTaskResponse{Task: t, Err: err}, nil
	}
}

func MakeUpdateTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		if _, err := identityFrom(ctx); err != nil {
			return UpdateTaskResponse{Err: err}, nil
		}

		req := request.(UpdateTaskRequest)
		t, err := s.UpdateTask(ctx, req.TaskID, req.Patch)
		return UpdateTaskResponse{Task: t, Err: err}, nil
	}
}

func MakeDeleteTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		if _, err := identityFrom(ctx); err != nil {
			return DeleteTaskResponse{Err: err}, nil
		}

		req := request.(DeleteTaskRequest)
		d, err := s.DeleteTask(ctx, req.TaskID)
		return DeleteTaskResponse{Deleted: d, Err: err}, nil
	}
}

// identityFrom requires the authenticator to have run. Tasks are not scoped
// to the identity; its presence is the whole check.
func identityFrom(ctx context.Context) (authsvc.Identity, error) {
	identity, ok := ctx.Value(authsvc.IdentityContextKey).(authsvc.Identity)
	if !ok {
		return authsvc.Identity{}, authsvc.ErrIdentityContextMissing
	}
	return identity, nil
}

var (
	_ endpoint.Failer = TasksResponse{}
	_ endpoint.Failer = CreateTaskResponse{}
	_ endpoint.Failer = UpdateTaskResponse{}
	_ endpoint.Failer = DeleteTaskResponse{}
)

type TasksRequest struct{}

type TasksResponse struct {
	Tasks []tasksvc.Task `json:"tasks"`
	Err   error          `json:"-"`
}

func (r TasksResponse) Failed() error { return r.Err }

// Payload flattens the response body to a bare array of tasks.
func (r TasksResponse) Payload() interface{} {
	if r.Tasks == nil {
		return []tasksvc.Task{}
	}
	return r.Tasks
}

type CreateTaskRequest struct {
	Text string `json:"text"`
}

type CreateTaskResponse struct {
	Task tasksvc.Task `json:"task"`
	Err  error        `json:"-"`
}

func (r CreateTaskResponse) Failed() error { return r.Err }

func (r CreateTaskResponse) StatusCode() int { return http.StatusCreated }

func (r CreateTaskResponse) Payload() interface{} { return r.Task }

type UpdateTaskRequest struct {
	TaskID uint64
	Patch  tasksvc.TaskPatch
}

type UpdateTaskResponse struct {
	Task tasksvc.Task `json:"task"`
	Err  error        `json:"-"`
}

func (r UpdateTaskResponse) Failed() error { return r.Err }

func (r UpdateTaskResponse) Payload() interface{} { return r.Task }

type DeleteTaskRequest struct {
	TaskID uint64
}

type DeleteTaskResponse struct {
	Deleted bool  `json:"deleted"`
	Err     error `json:"-"`
}

func (r DeleteTaskResponse) Failed() error { return r.Err }
