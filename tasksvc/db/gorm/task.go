package gorm

import (
	"errors"

	"github.com/taskpad/backend/tasksvc"
	libgorm "gorm.io/gorm"
)

type taskRepository struct {
	db *libgorm.DB
}

func NewTaskRepository(db *libgorm.DB) tasksvc.TaskRepository {
	return &taskRepository{db}
}

func (t *taskRepository) Create(text string) (tasksvc.Task, error) {
	task := tasksvc.Task{Text: text, Completed: false}
	result := t.db.Create(&task)

	return task, result.Error
}

func (t *taskRepository) FindAll() ([]tasksvc.Task, error) {
	var tasks []tasksvc.Task
	result := t.db.Order("id").Find(&tasks)

	return tasks, result.Error
}

// Update merges only the fields present in the patch. CreatedAt is never
// written after creation.
func (t *taskRepository) Update(taskID uint64, patch tasksvc.TaskPatch) (tasksvc.Task, error) {
	var task tasksvc.Task
	if result := t.db.First(&task, taskID); result.Error != nil {
		if errors.Is(result.Error, libgorm.ErrRecordNotFound) {
			return tasksvc.Task{}, tasksvc.ErrTaskNotFound
		}
		return tasksvc.Task{}, result.Error
	}

	fields := map[string]interface{}{}
	if patch.Text != nil {
		fields["text"] = *patch.Text
	}
	if patch.Completed != nil {
		fields["completed"] = *patch.Completed
	}

	if len(fields) == 0 {
		return task, nil
	}

	if result := t.db.Model(&task).Updates(fields); result.Error != nil {
		return tasksvc.Task{}, result.Error
	}

	return task, nil
}

func (t *taskRepository) Delete(taskID uint64) (bool, error) {
	result := t.db.Delete(&tasksvc.Task{}, taskID)

	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, tasksvc.ErrTaskNotFound
	}
	return true, nil
}
