package reconcile

import "github.com/dailydo/backend/domain"

// Enrich joins active tasks with the day's completion rows. The result
// preserves task order; each task is matched with at most one completion
// (first match by task id wins).
func Enrich(tasks []domain.Task, completions []domain.TaskCompletion) []domain.TaskWithCompletion {
	byTask := make(map[string]domain.TaskCompletion, len(completions))
	for _, completion := range completions {
		if _, ok := byTask[completion.TaskID]; !ok {
			byTask[completion.TaskID] = completion
		}
	}

	enriched := make([]domain.TaskWithCompletion, 0, len(tasks))
	for _, task := range tasks {
		view := domain.TaskWithCompletion{Task: task}
		if completion, ok := byTask[task.ID]; ok {
			view.IsCompletedToday = true
			view.CompletionID = completion.ID
			completedAt := completion.CompletedAt
			view.LastCompletedAt = &completedAt
		}
		enriched = append(enriched, view)
	}
	return enriched
}
