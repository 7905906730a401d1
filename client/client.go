// Package client provides a typed Go client for the taskpad HTTP API. Every
// endpoint is wrapped with a client-side rate limiter and a circuit breaker.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	kitjwt "github.com/go-kit/kit/auth/jwt"
	"github.com/go-kit/kit/circuitbreaker"
	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/ratelimit"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/sony/gobreaker"
	"github.com/taskpad/backend/authsvc/pkg/authendpoint"
	"github.com/taskpad/backend/authsvc/pkg/authservice"
	"github.com/taskpad/backend/tasksvc"
	"github.com/taskpad/backend/tasksvc/pkg/taskendpoint"
	"github.com/taskpad/backend/tasksvc/pkg/taskservice"
	"golang.org/x/time/rate"
)

// WithToken attaches a bearer token to the context so that protected calls
// carry it in the Authorization header.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, kitjwt.JWTContextKey, token)
}

// NewAuth returns a client for the /auth endpoints of the given instance.
func NewAuth(instance string) (authservice.Service, error) {
	u, err := parseInstance(instance)
	if err != nil {
		return nil, err
	}

	limiter := rate.NewLimiter(rate.Every(time.Second), 100)

	var registerEndpoint endpoint.Endpoint
	{
		registerEndpoint = httptransport.NewClient(
			"POST",
			copyURL(u, "/auth/register"),
			encodeHTTPGenericRequest,
			decodeHTTPRegisterResponse,
		).Endpoint()
		registerEndpoint = wrap("Register", limiter, registerEndpoint)
	}

	var loginEndpoint endpoint.Endpoint
	{
		loginEndpoint = httptransport.NewClient(
			"POST",
			copyURL(u, "/auth/login"),
			encodeHTTPGenericRequest,
			decodeHTTPLoginResponse,
		).Endpoint()
		loginEndpoint = wrap("Login", limiter, loginEndpoint)
	}

	return authendpoint.Set{
		RegisterEndpoint: registerEndpoint,
		LoginEndpoint:    loginEndpoint,
	}, nil
}

// NewTask returns a client for the /tasks endpoints of the given instance.
// Calls must go through a context prepared with WithToken.
func NewTask(instance string) (taskservice.Service, error) {
	u, err := parseInstance(instance)
	if err != nil {
		return nil, err
	}

	limiter := rate.NewLimiter(rate.Every(time.Second), 100)

	options := []httptransport.ClientOption{
		httptransport.ClientBefore(kitjwt.ContextToHTTP()),
	}

	var tasksEndpoint endpoint.Endpoint
	{
		tasksEndpoint = httptransport.NewClient(
			"GET",
			copyURL(u, "/tasks"),
			encodeHTTPGenericRequest,
			decodeHTTPTasksResponse,
			options...,
		).Endpoint()
		tasksEndpoint = wrap("Tasks", limiter, tasksEndpoint)
	}

	var createTaskEndpoint endpoint.Endpoint
	{
		createTaskEndpoint = httptransport.NewClient(
			"POST",
			copyURL(u, "/tasks"),
			encodeHTTPGenericRequest,
			decodeHTTPCreateTaskResponse,
			options...,
		).Endpoint()
		createTaskEndpoint = wrap("CreateTask", limiter, createTaskEndpoint)
	}

	var updateTaskEndpoint endpoint.Endpoint
	{
		updateTaskEndpoint = httptransport.NewClient(
			"PUT",
			copyURL(u, "/tasks"),
			encodeHTTPUpdateTaskRequest,
			decodeHTTPUpdateTaskResponse,
			options...,
		).Endpoint()
		updateTaskEndpoint = wrap("UpdateTask", limiter, updateTaskEndpoint)
	}

	var deleteTaskEndpoint endpoint.Endpoint
	{
		deleteTaskEndpoint = httptransport.NewClient(
			"DELETE",
			copyURL(u, "/tasks"),
			encodeHTTPDeleteTaskRequest,
			decodeHTTPDeleteTaskResponse,
			options...,
		).Endpoint()
		deleteTaskEndpoint = wrap("DeleteTask", limiter, deleteTaskEndpoint)
	}

	return taskendpoint.Set{
		TasksEndpoint:      tasksEndpoint,
		CreateTaskEndpoint: createTaskEndpoint,
		UpdateTaskEndpoint: updateTaskEndpoint,
		DeleteTaskEndpoint: deleteTaskEndpoint,
	}, nil
}

func wrap(name string, limiter *rate.Limiter, e endpoint.Endpoint) endpoint.Endpoint {
	e = ratelimit.NewErroringLimiter(limiter)(e)
	e = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
	}))(e)
	return e
}

func parseInstance(instance string) (*url.URL, error) {
	// Quickly sanitize the instance string.
	if !strings.HasPrefix(instance, "http") {
		instance = "http://" + instance
	}
	return url.Parse(instance)
}

func copyURL(base *url.URL, path string) *url.URL {
	next := *base
	next.Path = path
	return &next
}

func encodeHTTPGenericRequest(_ context.Context, r *http.Request, request interface{}) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(request); err != nil {
		return err
	}
	r.Body = ioutil.NopCloser(&buf)
	return nil
}

func encodeHTTPUpdateTaskRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(taskendpoint.UpdateTaskRequest)
	r.URL.Path = fmt.Sprintf("/tasks/%d", req.TaskID)

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(req.Patch); err != nil {
		return err
	}
	r.Body = ioutil.NopCloser(&buf)
	return nil
}

func encodeHTTPDeleteTaskRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(taskendpoint.DeleteTaskRequest)
	r.URL.Path = fmt.Sprintf("/tasks/%d", req.TaskID)
	return nil
}

func decodeHTTPRegisterResponse(_ context.Context, r *http.Response) (interface{}, error) {
	if r.StatusCode != http.StatusCreated {
		return nil, errorFromBody(r)
	}
	var resp authendpoint.RegisterResponse
	err := json.NewDecoder(r.Body).Decode(&resp)
	return resp, err
}

func decodeHTTPLoginResponse(_ context.Context, r *http.Response) (interface{}, error) {
	if r.StatusCode != http.StatusOK {
		return nil, errorFromBody(r)
	}
	var resp authendpoint.LoginResponse
	err := json.NewDecoder(r.Body).Decode(&resp)
	return resp, err
}

func decodeHTTPTasksResponse(_ context.Context, r *http.Response) (interface{}, error) {
	if r.StatusCode != http.StatusOK {
		return nil, errorFromBody(r)
	}
	var tasks []tasksvc.Task
	err := json.NewDecoder(r.Body).Decode(&tasks)
	return taskendpoint.TasksResponse{Tasks: tasks}, err
}

func decodeHTTPCreateTaskResponse(_ context.Context, r *http.Response) (interface{}, error) {
	if r.StatusCode != http.StatusCreated {
		return nil, errorFromBody(r)
	}
	var task tasksvc.Task
	err := json.NewDecoder(r.Body).Decode(&task)
	return taskendpoint.CreateTaskResponse{Task: task}, err
}

func decodeHTTPUpdateTaskResponse(_ context.Context, r *http.Response) (interface{}, error) {
	if r.StatusCode != http.StatusOK {
		return nil, errorFromBody(r)
	}
	var task tasksvc.Task
	err := json.NewDecoder(r.Body).Decode(&task)
	return taskendpoint.UpdateTaskResponse{Task: task}, err
}

func decodeHTTPDeleteTaskResponse(_ context.Context, r *http.Response) (interface{}, error) {
	if r.StatusCode != http.StatusOK {
		return nil, errorFromBody(r)
	}
	var resp taskendpoint.DeleteTaskResponse
	err := json.NewDecoder(r.Body).Decode(&resp)
	return resp, err
}

func errorFromBody(r *http.Response) error {
	var wrapper struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(r.Body).Decode(&wrapper); err == nil && wrapper.Error != "" {
		return errors.New(wrapper.Error)
	}
	return errors.New(r.Status)
}
