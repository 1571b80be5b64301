package domain

import "go.trai.ch/zerr"

var (
	// ErrTaskAlreadyExists is returned when attempting to add a task with a name that already exists.
	ErrTaskAlreadyExists = zerr.New("task already exists")

	// ErrMissingDependency is returned when a task references a dependency that doesn't exist in the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when a cycle is detected in the task dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrTaskNotFound is returned when a requested task is not registered.
	ErrTaskNotFound = zerr.New("task not found")

	// ErrTaskFailed is returned when a task action fails.
	ErrTaskFailed = zerr.New("task failed")

	// ErrUnknownTarget is returned when a build target name is not one of the known targets.
	ErrUnknownTarget = zerr.New("unknown build target")

	// ErrInvalidTarget is returned when a build target is missing its entry, build or dest.
	ErrInvalidTarget = zerr.New("invalid build target")

	// ErrTargetBusy is returned when a bundler is already active for a build target.
	ErrTargetBusy = zerr.New("a bundler is already active for this target")

	// ErrTransformFailed is returned when a module cannot be transformed or the bundle cannot be minified.
	ErrTransformFailed = zerr.New("transform failed")

	// ErrBundleFailed is returned when the module graph cannot be bundled.
	ErrBundleFailed = zerr.New("bundle failed")

	// ErrWriteFailed is returned when the bundle or its source map cannot be written.
	ErrWriteFailed = zerr.New("failed to write bundle")

	// ErrSourceMapNotFound is returned when a bundle carries no inline source map to extract.
	ErrSourceMapNotFound = zerr.New("no inline source map found in bundle")

	// ErrSourceMapInvalid is returned when the inline source map cannot be decoded.
	ErrSourceMapInvalid = zerr.New("inline source map is invalid")

	// ErrUnknownPreset is returned when the transform preset is not supported.
	ErrUnknownPreset = zerr.New("unknown transform preset")

	// ErrUnknownTransformPlugin is returned when a transform plugin is not supported.
	ErrUnknownTransformPlugin = zerr.New("unknown transform plugin")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrFailedToGetRoot is returned when the project root path cannot be determined.
	ErrFailedToGetRoot = zerr.New("failed to get absolute path of project root")

	// ErrCommandNotConfigured is returned when an external tool task has no command.
	ErrCommandNotConfigured = zerr.New("no command configured")

	// ErrCommandFailed is returned when an external tool command exits with an error.
	ErrCommandFailed = zerr.New("command failed")

	// ErrWatcherFailed is returned when a file watcher cannot be started.
	ErrWatcherFailed = zerr.New("failed to start file watcher")

	// ErrInvalidGlob is returned when a style source glob cannot be compiled.
	ErrInvalidGlob = zerr.New("invalid glob pattern")
)
