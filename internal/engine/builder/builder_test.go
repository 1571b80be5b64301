package builder_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/knit/internal/adapters/telemetry"
	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/knit/internal/core/ports"
	"go.trai.ch/knit/internal/core/ports/mocks"
	"go.trai.ch/knit/internal/engine/builder"
	"go.trai.ch/knit/internal/engine/errorsink"
	"go.trai.ch/knit/internal/engine/finisher"
	"go.uber.org/mock/gomock"
)

func rawBundle(body string) io.Reader {
	sourceMap := `{"version":3,"sources":["index.es6"],"mappings":"AAAA"}`
	return bytes.NewReader([]byte(body + "\n//# sourceMappingURL=data:application/json;base64," +
		base64.StdEncoding.EncodeToString([]byte(sourceMap)) + "\n"))
}

// manualSource hands batches to the subscribed handler when the test calls Emit.
type manualSource struct {
	mu      sync.Mutex
	handler func([]string)
	files   func() []string
}

func (s *manualSource) OnChange(handler func([]string)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = handler
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.handler = nil
	}
}

func (s *manualSource) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (s *manualSource) Emit(paths ...string) {
	s.mu.Lock()
	handler := s.handler
	s.mu.Unlock()
	handler(paths)
}

type fixture struct {
	ctrl     *gomock.Controller
	factory  *mocks.MockBundlerFactory
	logger   *mocks.MockLogger
	notifier *mocks.MockNotifier
	registry *builder.Registry
	source   *manualSource
	builder  *builder.Builder
	settings domain.BundleSettings
	target   domain.Target
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	root := t.TempDir()

	f := &fixture{
		ctrl:     ctrl,
		factory:  mocks.NewMockBundlerFactory(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
		notifier: mocks.NewMockNotifier(ctrl),
		registry: builder.NewRegistry(),
		source:   &manualSource{},
		settings: domain.DefaultProject(root).Bundle,
	}
	f.target = domain.DefaultProject(root).Targets[domain.TargetDev]

	sources := func(files func() []string) ports.ChangeSource {
		f.source.files = files
		return f.source
	}
	f.builder = builder.New(
		f.factory,
		finisher.New(mocks.NewMockMinifier(ctrl), telemetry.NewNoOpTracer()),
		f.registry,
		sources,
		errorsink.New(f.notifier, f.logger),
		f.logger,
	)
	return f
}

func TestBuilder_Build(t *testing.T) {
	f := newFixture(t)

	bundler := mocks.NewMockBundler(f.ctrl)
	f.factory.EXPECT().NewBundler(f.settings, f.target).Return(bundler, nil)
	bundler.EXPECT().Bundle(gomock.Any()).Return(rawBundle("console.log(1);"), nil)
	bundler.EXPECT().Dispose()

	artifact, err := f.builder.Build(context.Background(), f.settings, f.target, false)
	require.NoError(t, err)

	assert.Equal(t, []string{f.target.BundlePath(), f.target.MapPath()}, artifact.Files)
	entries, err := os.ReadDir(f.target.Dest)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.False(t, f.registry.Active(f.target.Name))
}

func TestBuilder_Build_BundleError(t *testing.T) {
	f := newFixture(t)

	bundleErr := errors.Join(domain.ErrBundleFailed, errors.New(`index.es6:1:7: Could not resolve "./missing"`))

	bundler := mocks.NewMockBundler(f.ctrl)
	f.factory.EXPECT().NewBundler(gomock.Any(), gomock.Any()).Return(bundler, nil)
	bundler.EXPECT().Bundle(gomock.Any()).Return(nil, bundleErr)
	bundler.EXPECT().Dispose()

	_, err := f.builder.Build(context.Background(), f.settings, f.target, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBundleFailed)

	_, statErr := os.Stat(f.target.Dest)
	assert.True(t, os.IsNotExist(statErr))
	assert.False(t, f.registry.Active(f.target.Name))
}

func TestBuilder_Build_FactoryError(t *testing.T) {
	f := newFixture(t)

	f.factory.EXPECT().NewBundler(gomock.Any(), gomock.Any()).Return(nil, domain.ErrUnknownPreset)

	_, err := f.builder.Build(context.Background(), f.settings, f.target, false)
	require.ErrorIs(t, err, domain.ErrUnknownPreset)
	assert.False(t, f.registry.Active(f.target.Name))
}

func TestBuilder_Watch(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)

		transformErr := errors.Join(domain.ErrTransformFailed, errors.New(`index.es6:1:6: Unexpected "{"`))
		bundler := mocks.NewMockBundler(f.ctrl)
		f.factory.EXPECT().NewBundler(f.settings, f.target).Return(bundler, nil)
		gomock.InOrder(
			bundler.EXPECT().Bundle(gomock.Any()).Return(rawBundle("console.log(1);"), nil),
			bundler.EXPECT().Bundle(gomock.Any()).Return(nil, transformErr),
			bundler.EXPECT().Bundle(gomock.Any()).Return(rawBundle("console.log(2);"), nil),
		)
		bundler.EXPECT().Modules().Return([]string{filepath.Join(f.settings.Root, "index.es6")}).AnyTimes()
		bundler.EXPECT().Dispose()

		gomock.InOrder(
			f.logger.EXPECT().Info("Built index.js in 0 milliseconds."),
			f.logger.EXPECT().Error(gomock.Any()),
			f.notifier.EXPECT().Notify(errorsink.NotificationTitle, gomock.Any()).Return(nil),
			f.logger.EXPECT().Info("Rebuilt index.js in 0 milliseconds.").Times(2),
		)

		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)
		go func() { done <- f.builder.Watch(ctx, f.settings, f.target, false) }()
		synctest.Wait()

		assert.True(t, f.registry.Active(f.target.Name))
		assert.Equal(t, []string{filepath.Join(f.settings.Root, "index.es6")}, f.source.files())

		f.source.Emit(filepath.Join(f.settings.Root, "index.es6"))
		f.source.Emit(filepath.Join(f.settings.Root, "src", "version.js"))
		f.source.Emit(filepath.Join(f.settings.Root, "index.es6"))

		code, err := os.ReadFile(f.target.BundlePath())
		require.NoError(t, err)
		assert.Equal(t, "console.log(2);\n//# sourceMappingURL=index.js.map\n", string(code))

		cancel()
		require.NoError(t, <-done)
		assert.False(t, f.registry.Active(f.target.Name))
	})
}

func TestBuilder_Watch_RefusesSecondBundlerForTarget(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)

		bundler := mocks.NewMockBundler(f.ctrl)
		f.factory.EXPECT().NewBundler(gomock.Any(), f.target).Return(bundler, nil)
		bundler.EXPECT().Bundle(gomock.Any()).Return(rawBundle("console.log(1);"), nil)
		bundler.EXPECT().Dispose()
		f.logger.EXPECT().Info(gomock.Any())

		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)
		go func() { done <- f.builder.Watch(ctx, f.settings, f.target, false) }()
		synctest.Wait()

		_, err := f.builder.Build(context.Background(), f.settings, f.target, false)
		require.ErrorIs(t, err, domain.ErrTargetBusy)

		cancel()
		require.NoError(t, <-done)
	})
}
