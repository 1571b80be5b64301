package ports

import (
	"context"
	"io"

	"go.trai.ch/knit/internal/core/domain"
)

// Executor runs external tool commands.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the command and returns an error if it cannot be started or exits non-zero.
	Execute(ctx context.Context, cmd domain.Command, stdout, stderr io.Writer) error
}
