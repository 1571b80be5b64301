package domain

import (
	"sort"
	"time"
)

const (
	// ConfigFileName is the configuration file looked up in the working directory.
	ConfigFileName = "knit.yaml"

	// DefaultPollInterval is how often watched modules are checked for changes.
	DefaultPollInterval = 1000 * time.Millisecond
)

// BundleSettings holds what the bundler needs beyond a target.
type BundleSettings struct {
	// Root is the absolute project directory.
	Root string
	// Paths are extra module search directories.
	Paths []string
	// Extensions are source extensions recognized in addition to the bundler defaults.
	Extensions []string
	// Transform is the per-module source transform.
	Transform TransformConfig
}

// StyleSettings describes the external style compiler.
type StyleSettings struct {
	// Sources are globs, relative to the project root, of the watched style sources.
	Sources []string
	// Command compiles the styles.
	Command []string
}

// DocSettings describes the external documentation generator.
type DocSettings struct {
	Command []string
}

// Project is the loaded build configuration.
type Project struct {
	Root    string
	Targets map[string]Target
	Bundle  BundleSettings
	Styles  StyleSettings
	Docs    DocSettings
}

// DefaultProject returns the built-in configuration rooted at root.
func DefaultProject(root string) *Project {
	targets := make(map[string]Target)
	for name, t := range DefaultTargets() {
		targets[name] = t.Resolve(root)
	}
	return &Project{
		Root:    root,
		Targets: targets,
		Bundle: BundleSettings{
			Root:       root,
			Paths:      []string{"./node_modules", "./lib/javascripts/"},
			Extensions: []string{".es6"},
			Transform:  DefaultTransform(),
		},
		Styles: StyleSettings{
			Sources: []string{
				"./lib/sass/*.scss",
				"./lib/sass/**/*.scss",
				"./lib/sass/**/**/*.scss",
			},
			Command: []string{"sass", "--style=compressed", "--source-map", "lib/sass:public/assets/css"},
		},
		Docs: DocSettings{
			Command: []string{"jsdoc", "README.md", "-r", "lib/javascripts"},
		},
	}
}

// Target looks up a target by name.
func (p *Project) Target(name string) (Target, bool) {
	t, ok := p.Targets[name]
	return t, ok
}

// TargetNames returns the target names in sorted order.
func (p *Project) TargetNames() []string {
	names := make([]string, 0, len(p.Targets))
	for name := range p.Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
