package domain

// Task is a named unit of work the runner can execute.
type Task struct {
	Name         string
	Description  string
	Dependencies []string
}
