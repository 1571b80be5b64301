package domain_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/knit/internal/core/domain"
)

func TestDefaultTargets(t *testing.T) {
	targets := domain.DefaultTargets()
	require.Len(t, targets, 2)

	dev := targets[domain.TargetDev]
	assert.Equal(t, "./index.es6", dev.Entry)
	assert.Equal(t, "index.js", dev.Build)
	assert.Equal(t, "./public/assets/javascripts", dev.Dest)

	test := targets[domain.TargetTest]
	assert.Equal(t, "./spec/javascripts/indexSpec.es6", test.Entry)
	assert.Equal(t, "indexSpec.js", test.Build)
	assert.Equal(t, "./spec/build", test.Dest)

	for _, target := range targets {
		assert.NoError(t, target.Validate())
	}
}

func TestTarget_Resolve(t *testing.T) {
	root := filepath.FromSlash("/work/app")
	target := domain.DefaultTargets()[domain.TargetDev].Resolve(root)

	assert.Equal(t, filepath.Join(root, "index.es6"), target.Entry)
	assert.Equal(t, filepath.Join(root, "public", "assets", "javascripts"), target.Dest)
	assert.Equal(t, filepath.Join(root, "public", "assets", "javascripts", "index.js"), target.BundlePath())
	assert.Equal(t, filepath.Join(root, "public", "assets", "javascripts", "index.js.map"), target.MapPath())
	assert.Equal(t, "index.js.map", target.MapName())
}

func TestTarget_Validate(t *testing.T) {
	tests := []struct {
		name   string
		target domain.Target
	}{
		{name: "missing name", target: domain.Target{Entry: "a", Build: "b", Dest: "c"}},
		{name: "missing entry", target: domain.Target{Name: "dev", Build: "b", Dest: "c"}},
		{name: "missing build", target: domain.Target{Name: "dev", Entry: "a", Dest: "c"}},
		{name: "missing dest", target: domain.Target{Name: "dev", Entry: "a", Build: "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.target.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid build target")
		})
	}
}

func TestDefaultProject(t *testing.T) {
	root := filepath.FromSlash("/work/app")
	p := domain.DefaultProject(root)

	assert.Equal(t, []string{"dev", "test"}, p.TargetNames())
	assert.Equal(t, root, p.Bundle.Root)
	assert.Equal(t, []string{".es6"}, p.Bundle.Extensions)
	assert.Equal(t, domain.DefaultTransform(), p.Bundle.Transform)
	assert.Len(t, p.Styles.Sources, 3)

	dev, ok := p.Target(domain.TargetDev)
	require.True(t, ok)
	assert.True(t, filepath.IsAbs(dev.Dest))
}
