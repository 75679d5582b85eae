package tasks

// TaskSchedulerInterface defines the interface for task scheduling
// operations. The main application and the admin API use it to manage
// background processing.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
