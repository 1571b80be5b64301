package domain

const (
	// PresetES2015 lowers newer syntax to ES2015.
	PresetES2015 = "es2015"

	// PluginProtoToAssign rewrites __proto__ assignments into property copies.
	PluginProtoToAssign = "transform-proto-to-assign"
	// PluginClasses names loose class lowering. Classes are ES2015 syntax and are kept as written.
	PluginClasses = "transform-es2015-classes"
)

// TransformPlugin is one named lowering step of the transform pipeline.
type TransformPlugin struct {
	Name  string
	Loose bool
}

// TransformConfig is the per-module source transform applied while bundling.
type TransformConfig struct {
	Preset     string
	Plugins    []TransformPlugin
	SourceMaps bool
}

// DefaultTransform returns the fixed transform configuration used for every target.
func DefaultTransform() TransformConfig {
	return TransformConfig{
		Preset: PresetES2015,
		Plugins: []TransformPlugin{
			{Name: PluginProtoToAssign},
			{Name: PluginClasses, Loose: true},
		},
		SourceMaps: false,
	}
}

// MinifyOptions configures whole-bundle minification.
type MinifyOptions struct {
	// PreserveLegalComments keeps comments marked significant (/*!, @license, @preserve).
	PreserveLegalComments bool
	// Mangle renames local identifiers.
	Mangle bool
	// Compress applies dead-code and structural compression.
	Compress bool
}

// DefaultMinify returns the minification settings used when a bundle is minified.
func DefaultMinify() MinifyOptions {
	return MinifyOptions{
		PreserveLegalComments: true,
		Mangle:                true,
		Compress:              true,
	}
}
