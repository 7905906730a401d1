package taskservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taskpad/backend/tasksvc"
)

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

func TestCreateTaskValidatesText(t *testing.T) {
	svc := NewBasicService(&fakeTaskRepository{})

	_, err := svc.CreateTask(context.Background(), "")
	if !errors.Is(err, tasksvc.ErrInvalidArgument) {
		t.Errorf("CreateTask(\"\"): got %v, want ErrInvalidArgument", err)
	}
}

func TestCreateTaskDefaults(t *testing.T) {
	svc := NewBasicService(&fakeTaskRepository{})

	task, err := svc.CreateTask(context.Background(), "buy milk")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.ID == 0 {
		t.Error("CreateTask: ID not assigned")
	}
	if task.Completed {
		t.Error("CreateTask: new task marked completed")
	}
	if task.CreatedAt.IsZero() {
		t.Error("CreateTask: CreatedAt not set")
	}
}

func TestTasksPreserveInsertionOrder(t *testing.T) {
	svc := NewBasicService(&fakeTaskRepository{})

	for _, text := range []string{"first", "second", "third"} {
		if _, err := svc.CreateTask(context.Background(), text); err != nil {
			t.Fatalf("CreateTask(%q): %v", text, err)
		}
	}

	tasks, err := svc.Tasks(context.Background())
	if err != nil {
		t.Fatalf("Tasks: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("Tasks: got %d, want 3", len(tasks))
	}
	for i, want := range []string{"first", "second", "third"} {
		if tasks[i].Text != want {
			t.Errorf("tasks[%d].Text = %q, want %q", i, tasks[i].Text, want)
		}
	}
}

func TestUpdateTaskPartialMerge(t *testing.T) {
	svc := NewBasicService(&fakeTaskRepository{})

	created, err := svc.CreateTask(context.Background(), "buy milk")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	completed := true
	updated, err := svc.UpdateTask(context.Background(), created.ID, tasksvc.TaskPatch{Completed: &completed})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if !updated.Completed {
		t.Error("UpdateTask: completed not set")
	}
	if updated.Text != "buy milk" {
		t.Errorf("UpdateTask changed text to %q", updated.Text)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("UpdateTask changed CreatedAt")
	}
}

func TestUpdateTaskRejectsEmptyText(t *testing.T) {
	svc := NewBasicService(&fakeTaskRepository{})

	created, err := svc.CreateTask(context.Background(), "buy milk")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	empty := ""
	_, err = svc.UpdateTask(context.Background(), created.ID, tasksvc.TaskPatch{Text: &empty})
	if !errors.Is(err, tasksvc.ErrInvalidArgument) {
		t.Errorf("UpdateTask(empty text): got %v, want ErrInvalidArgument", err)
	}
}

func TestUpdateTaskNotFound(t *testing.T) {
	svc := NewBasicService(&fakeTaskRepository{})

	completed := true
	_, err := svc.UpdateTask(context.Background(), 99, tasksvc.TaskPatch{Completed: &completed})
	if !errors.Is(err, tasksvc.ErrTaskNotFound) {
		t.Errorf("UpdateTask(99): got %v, want ErrTaskNotFound", err)
	}
}

func TestDeleteTaskTwice(t *testing.T) {
	svc := NewBasicService(&fakeTaskRepository{})

	created, err := svc.CreateTask(context.Background(), "buy milk")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	deleted, err := svc.DeleteTask(context.Background(), created.ID)
	if err != nil || !deleted {
		t.Fatalf("DeleteTask: got (%v, %v), want (true, nil)", deleted, err)
	}

	_, err = svc.DeleteTask(context.Background(), created.ID)
	if !errors.Is(err, tasksvc.ErrTaskNotFound) {
		t.Errorf("second DeleteTask: got %v, want ErrTaskNotFound", err)
	}
}
