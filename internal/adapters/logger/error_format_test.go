package logger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/knit/internal/adapters/logger"
	"go.trai.ch/zerr"
)

func TestCollectErrorEntries(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "standard error",
			err:  errors.New("simple error"),
			want: []string{"simple error"},
		},
		{
			name: "zerr chain ending in standard error",
			err:  zerr.Wrap(zerr.Wrap(errors.New("root cause"), "middle"), "outer"),
			want: []string{"outer", "middle", "root cause"},
		},
		{
			name: "nil",
			err:  nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.CollectErrorEntries(tt.err))
		})
	}
}

func TestFormatErrorEntries(t *testing.T) {
	got := logger.FormatErrorEntries([]string{"outer\ndetail", "inner\nmore"})
	want := "Error: outer\n" +
		"       detail\n" +
		"\n" +
		"  Caused by:\n" +
		"    → inner\n" +
		"      more"
	assert.Equal(t, want, got)
}
