// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/knit/internal/adapters/config"
	_ "go.trai.ch/knit/internal/adapters/esbuild"
	_ "go.trai.ch/knit/internal/adapters/logger"
	_ "go.trai.ch/knit/internal/adapters/notify"
	_ "go.trai.ch/knit/internal/adapters/shell"
	_ "go.trai.ch/knit/internal/adapters/telemetry"
	_ "go.trai.ch/knit/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/knit/internal/app"
	_ "go.trai.ch/knit/internal/engine/builder"
	_ "go.trai.ch/knit/internal/engine/scheduler"
)
