package domain

// Command is an external tool invocation.
type Command struct {
	// Name labels the command in logs, e.g. "sass".
	Name string
	// Args is the program followed by its arguments.
	Args []string
	// Dir is the working directory.
	Dir string
	// Environment overrides variables of the inherited environment.
	Environment map[string]string
}
