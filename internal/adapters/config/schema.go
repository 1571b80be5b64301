package config

// Knitfile represents the structure of the knit.yaml configuration file.
type Knitfile struct {
	Version string                `yaml:"version"`
	Root    string                `yaml:"root"`
	Targets map[string]*TargetDTO `yaml:"targets"`
	Resolve *ResolveDTO           `yaml:"resolve"`
	Styles  *CommandDTO           `yaml:"styles"`
	Docs    *CommandDTO           `yaml:"docs"`
}

// TargetDTO overrides fields of a built-in build target.
type TargetDTO struct {
	Entry string `yaml:"entry"`
	Build string `yaml:"build"`
	Dest  string `yaml:"dest"`
}

// ResolveDTO configures module resolution.
type ResolveDTO struct {
	Paths      []string `yaml:"paths"`
	Extensions []string `yaml:"extensions"`
}

// CommandDTO configures an external tool.
type CommandDTO struct {
	Sources []string `yaml:"sources"`
	Command []string `yaml:"command"`
}
