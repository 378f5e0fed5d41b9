package config

import (
	"context"
	"fmt"

	"github.com/agentrun/agentrun/internal/logger"
)

// TaskValidationError reports the 1-based index of an invalid task and
// every required field it is missing.
type TaskValidationError struct {
	Index   int
	Missing []string
}

func (e *TaskValidationError) Error() string {
	return fmt.Sprintf("task %d is missing required fields: %v", e.Index, e.Missing)
}

// ValidateTask checks that the task has its required fields. The index
// is 1-based and only used for error reporting.
func ValidateTask(task Task, index int) error {
	var missing []string
	if task.Name == "" {
		missing = append(missing, "name")
	}
	if task.Template == "" {
		missing = append(missing, "template")
	}
	if len(missing) > 0 {
		return &TaskValidationError{Index: index, Missing: missing}
	}
	return nil
}

// ValidateTasks validates every task in order, stopping at the first
// invalid one.
func ValidateTasks(ctx context.Context, tasks []Task) error {
	lg := logger.FromContext(ctx)
	for i, task := range tasks {
		if err := ValidateTask(task, i+1); err != nil {
			lg.Error("Invalid task config", "index", i+1, "err", err)
			return err
		}
	}
	lg.Info("Validated tasks", "count", len(tasks))
	return nil
}
