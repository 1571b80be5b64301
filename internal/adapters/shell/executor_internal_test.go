package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveEnvironment(t *testing.T) {
	tests := []struct {
		name      string
		sysEnv    []string
		overrides map[string]string
		expected  []string
	}{
		{
			name:     "inherits system environment",
			sysEnv:   []string{"USER=test", "PATH=/bin"},
			expected: []string{"PATH=/bin", "USER=test"},
		},
		{
			name:      "overrides win",
			sysEnv:    []string{"USER=test", "PATH=/bin"},
			overrides: map[string]string{"USER": "knit", "NODE_ENV": "production"},
			expected:  []string{"NODE_ENV=production", "PATH=/bin", "USER=knit"},
		},
		{
			name:     "malformed entries are dropped",
			sysEnv:   []string{"BROKEN", "A=1=2"},
			expected: []string{"A=1=2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resolveEnvironment(tt.sysEnv, tt.overrides))
		})
	}
}
