package esbuild_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/knit/internal/adapters/esbuild"
	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestNewTransformer_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     domain.TransformConfig
		wantErr error
		key     string
		value   string
	}{
		{
			name: "default configuration",
			cfg:  domain.DefaultTransform(),
		},
		{
			name:    "unknown preset",
			cfg:     domain.TransformConfig{Preset: "es3"},
			wantErr: domain.ErrUnknownPreset,
			key:     "preset",
			value:   "es3",
		},
		{
			name:    "newer preset",
			cfg:     domain.TransformConfig{Preset: "es2017"},
			wantErr: domain.ErrUnknownPreset,
			key:     "preset",
			value:   "es2017",
		},
		{
			name: "unknown plugin",
			cfg: domain.TransformConfig{
				Preset:  domain.PresetES2015,
				Plugins: []domain.TransformPlugin{{Name: "transform-react-jsx"}},
			},
			wantErr: domain.ErrUnknownTransformPlugin,
			key:     "plugin",
			value:   "transform-react-jsx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := esbuild.NewTransformer("/project", tt.cfg)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.NotNil(t, tr)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr.Error())
			var zErr *zerr.Error
			require.ErrorAs(t, err, &zErr)
			assert.Equal(t, tt.value, zErr.Metadata()[tt.key])
		})
	}
}

func TestTransformer_Transform(t *testing.T) {
	tr, err := esbuild.NewTransformer("/project", domain.DefaultTransform())
	require.NoError(t, err)

	t.Run("lowers to es2015", func(t *testing.T) {
		out, err := tr.Transform("/project/lib/math.es6", []byte("export const square = (x) => x ** 2;\n"))
		require.NoError(t, err)
		assert.Contains(t, string(out), "Math.pow")
		assert.Contains(t, string(out), "export")
	})

	t.Run("keeps es2015 classes", func(t *testing.T) {
		src := []byte("class Animal { speak() { return `hi ${this.n}`; } }\nclass Dog extends Animal {}\nlet f = (x) => x;\n")

		out, err := tr.Transform("/project/lib/animals.es6", src)
		require.NoError(t, err)
		assert.Contains(t, string(out), "class Animal {")
		assert.Contains(t, string(out), "class Dog extends Animal {")
		assert.Contains(t, string(out), "return `hi ${this.n}`;")
		assert.Contains(t, string(out), "let f = (x) => x;")
		assert.NotContains(t, string(out), "prototype")

		strictCfg := domain.DefaultTransform()
		strictCfg.Plugins = []domain.TransformPlugin{
			{Name: domain.PluginProtoToAssign},
			{Name: domain.PluginClasses, Loose: false},
		}
		strict, err := esbuild.NewTransformer("/project", strictCfg)
		require.NoError(t, err)
		strictOut, err := strict.Transform("/project/lib/animals.es6", src)
		require.NoError(t, err)
		assert.Equal(t, string(out), string(strictOut))
	})

	t.Run("rewrites proto assignments", func(t *testing.T) {
		out, err := tr.Transform("/project/lib/inherit.es6", []byte("var a = {};\nvar b = {};\na.__proto__ = b;\n"))
		require.NoError(t, err)
		assert.Contains(t, string(out), "_defaults(a, b)")
		assert.NotContains(t, string(out), "__proto__ =")
	})

	t.Run("no inline source map", func(t *testing.T) {
		out, err := tr.Transform("/project/index.es6", []byte("console.log(1);\n"))
		require.NoError(t, err)
		assert.NotContains(t, string(out), "sourceMappingURL")
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := tr.Transform("/project/lib/bad.es6", []byte("const = 1;\n"))
		require.Error(t, err)

		var transformErr *esbuild.TransformError
		require.ErrorAs(t, err, &transformErr)
		require.NotEmpty(t, transformErr.Messages)
		require.NotNil(t, transformErr.Messages[0].Location)
		assert.Equal(t, "lib/bad.es6", transformErr.Messages[0].Location.File)
	})
}
