package ports

import "go.trai.ch/knit/internal/core/domain"

// ConfigLoader defines the interface for loading the build configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration for the project in cwd. When path is empty the default
	// file name is looked up in cwd; a missing default file yields the built-in configuration.
	Load(cwd, path string) (*domain.Project, error)
}
