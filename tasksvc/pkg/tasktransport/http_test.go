package tasktransport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-kit/kit/log"
	"github.com/taskpad/backend/authsvc/pkg/authservice"
	"github.com/taskpad/backend/tasksvc"
	"github.com/taskpad/backend/tasksvc/pkg/taskendpoint"
	"github.com/taskpad/backend/tasksvc/pkg/taskservice"
	"github.com/taskpad/backend/usersvc"
)

var testSecret = []byte("test-secret")

type fakeTaskRepository struct {
	seq   uint64
	tasks []tasksvc.Task
}

func (r *fakeTaskRepository) Create(text string) (tasksvc.Task, error) {
	r.seq++
	task := tasksvc.Task{ID: r.seq, Text: text, Completed: false, CreatedAt: time.Now()}
	r.tasks = append(r.tasks, task)
	return task, nil
}

func (r *fakeTaskRepository) FindAll() ([]tasksvc.Task, error) {
	out := make([]tasksvc.Task, len(r.tasks))
	copy(out, r.tasks)
	return out, nil
}

func (r *fakeTaskRepository) Update(taskID uint64, patch tasksvc.TaskPatch) (tasksvc.Task, error) {
	for i := range r.tasks {
		if r.tasks[i].ID != taskID {
			continue
		}
		if patch.Text != nil {
			r.tasks[i].Text = *patch.Text
		}
		if patch.Completed != nil {
			r.tasks[i].Completed = *patch.Completed
		}
		return r.tasks[i], nil
	}
	return tasksvc.Task{}, tasksvc.ErrTaskNotFound
}

func (r *fakeTaskRepository) Delete(taskID uint64) (bool, error) {
	for i := range r.tasks {
		if r.tasks[i].ID == taskID {
			r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
			return true, nil
		}
	}
	return false, tasksvc.ErrTaskNotFound
}

func newTestHandler() http.Handler {
	logger := log.NewNopLogger()
	tokenizer := authservice.NewTokenizer(testSecret)
	svc := taskservice.NewBasicService(&fakeTaskRepository{})

	return NewHTTPHandler(taskendpoint.New(svc, logger), tokenizer, logger)
}

func validToken(t *testing.T) string {
	t.Helper()

	token, err := authservice.NewTokenizer(testSecret).Issue(usersvc.User{ID: 1, Email: "a@x.com"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return token
}

func doRequest(handler http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestMissingTokenUnauthorized(t *testing.T) {
	handler := newTestHandler()

	for _, tt := range []struct {
		method string
		path   string
		body   string
	}{
		{"GET", "/tasks", ""},
		{"POST", "/tasks", `{"text":"buy milk"}`},
		{"PUT", "/tasks/1", `{"completed":true}`},
		{"DELETE", "/tasks/1", ""},
	} {
		w := doRequest(handler, tt.method, tt.path, "", tt.body)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: status %d, want 401", tt.method, tt.path, w.Code)
		}
	}
}

func TestInvalidTokenForbidden(t *testing.T) {
	handler := newTestHandler()

	w := doRequest(handler, "GET", "/tasks", "not-a-token", "")
	if w.Code != http.StatusForbidden {
		t.Errorf("invalid token: status %d, want 403", w.Code)
	}
}

func TestExpiredTokenForbidden(t *testing.T) {
	handler := newTestHandler()

	claims := jwt.MapClaims{
		"uuid":    "uuid-1",
		"user_id": 1,
		"email":   "a@x.com",
		"iat":     time.Now().Add(-2 * time.Hour).Unix(),
		"exp":     time.Now().Add(-time.Hour).Unix(),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}

	w := doRequest(handler, "GET", "/tasks", expired, "")
	if w.Code != http.StatusForbidden {
		t.Errorf("expired token: status %d, want 403", w.Code)
	}
}

func TestCreateTask(t *testing.T) {
	handler := newTestHandler()
	token := validToken(t)

	w := doRequest(handler, "POST", "/tasks", token, `{"text":"buy milk"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d, want 201", w.Code)
	}

	var task tasksvc.Task
	if err := json.NewDecoder(w.Body).Decode(&task); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if task.ID == 0 {
		t.Error("create: no ID in response")
	}
	if task.Text != "buy milk" {
		t.Errorf("create: text = %q, want buy milk", task.Text)
	}
	if task.Completed {
		t.Error("create: new task marked completed")
	}
}

func TestCreateTaskEmptyText(t *testing.T) {
	handler := newTestHandler()

	w := doRequest(handler, "POST", "/tasks", validToken(t), `{"text":""}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("create empty text: status %d, want 400", w.Code)
	}
}

func TestListTasksIsArray(t *testing.T) {
	handler := newTestHandler()
	token := validToken(t)

	w := doRequest(handler, "GET", "/tasks", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: status %d, want 200", w.Code)
	}

	var tasks []tasksvc.Task
	if err := json.NewDecoder(w.Body).Decode(&tasks); err != nil {
		t.Fatalf("list response is not an array: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("list: got %d tasks, want 0", len(tasks))
	}

	doRequest(handler, "POST", "/tasks", token, `{"text":"buy milk"}`)

	w = doRequest(handler, "GET", "/tasks", token, "")
	if err := json.NewDecoder(w.Body).Decode(&tasks); err != nil {
		t.Fatalf("list response is not an array: %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("list: got %d tasks, want 1", len(tasks))
	}
}

func TestUpdateTaskPartial(t *testing.T) {
	handler := newTestHandler()
	token := validToken(t)

	w := doRequest(handler, "POST", "/tasks", token, `{"text":"buy milk"}`)
	var created tasksvc.Task
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	w = doRequest(handler, "PUT", fmt.Sprintf("/tasks/%d", created.ID), token, `{"completed":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update: status %d, want 200", w.Code)
	}

	var updated tasksvc.Task
	if err := json.NewDecoder(w.Body).Decode(&updated); err != nil {
		t.Fatalf("decode update response: %v", err)
	}
	if !updated.Completed {
		t.Error("update: completed not set")
	}
	if updated.Text != "buy milk" {
		t.Errorf("update changed text to %q", updated.Text)
	}
}

func TestUpdateTaskNotFound(t *testing.T) {
	handler := newTestHandler()

	w := doRequest(handler, "PUT", "/tasks/99", validToken(t), `{"completed":true}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("update unknown id: status %d, want 404", w.Code)
	}
}

func TestDeleteTaskTwice(t *testing.T) {
	handler := newTestHandler()
	token := validToken(t)

	w := doRequest(handler, "POST", "/tasks", token, `{"text":"buy milk"}`)
	var created tasksvc.Task
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	path := fmt.Sprintf("/tasks/%d", created.ID)

	w = doRequest(handler, "DELETE", path, token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: status %d, want 200", w.Code)
	}

	w = doRequest(handler, "DELETE", path, token, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete: status %d, want 404", w.Code)
	}
}
