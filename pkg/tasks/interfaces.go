package tasks

import "github.com/hibiken/asynq"

// Enqueuer is the slice of asynq.Client the API server needs. It can be
// swapped for a fake in tests or an in-process runner in one-shot mode.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
