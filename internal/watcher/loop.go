package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/conneroisu/devworkflows/internal/logging"
	"github.com/conneroisu/devworkflows/internal/rules"
)

// DefaultDelay is the debounce window used when Loop.Delay is zero.
const DefaultDelay = 200 * time.Millisecond

// CompileFunc runs one compilation pass.
type CompileFunc func(ctx context.Context) error

// Loop recompiles a project whenever its rule, config or asset files change.
type Loop struct {
	// Dir is the project root; .dwf under it is watched.
	Dir string
	// Delay is the debounce window.
	Delay time.Duration
	// Compile is invoked once at startup and once per settled burst of changes.
	Compile CompileFunc
	Logger  logging.Logger

	runMu sync.Mutex
}

// Run watches until ctx is cancelled. Compile failures are logged and never
// end the loop. Run returns nil on cancellation.
func (l *Loop) Run(ctx context.Context) error {
	logger := l.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.WithComponent("watch")

	delay := l.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}

	fw, err := NewFileWatcher(delay, logger)
	if err != nil {
		return err
	}

	dwfDir, err := cleanPath(filepath.Join(l.Dir, rules.DirName))
	if err != nil {
		_ = fw.Stop()
		return err
	}

	fw.AddFilter(NoCacheFilter(dwfDir))
	fw.AddFilter(AnyFilter(RuleFilter, AssetFilter(dwfDir)))
	fw.AddHandler(func(events []ChangeEvent) error {
		for _, e := range events {
			logger.Debug(ctx, "Change detected", "path", e.Path, "type", e.Type.String())
		}
		l.compile(ctx, logger, "change")
		return nil
	})

	if err := fw.AddRecursive(dwfDir); err != nil {
		_ = fw.Stop()
		return err
	}

	if err := fw.Start(ctx); err != nil {
		_ = fw.Stop()
		return err
	}

	logger.Info(ctx, "Watching for changes", "dir", dwfDir, "debounce", delay)
	l.compile(ctx, logger, "startup")

	<-ctx.Done()

	if err := fw.Stop(); err != nil {
		logger.Warn(context.Background(), err, "Failed to close watcher")
	}
	logger.Info(context.Background(), "Watch stopped")
	return nil
}

func (l *Loop) compile(ctx context.Context, logger logging.Logger, trigger string) {
	l.runMu.Lock()
	defer l.runMu.Unlock()

	if ctx.Err() != nil {
		return
	}
	if err := l.Compile(ctx); err != nil {
		logger.Warn(ctx, err, "Compilation failed, still watching", "trigger", trigger)
		return
	}
	logger.Debug(ctx, "Compilation finished", "trigger", trigger)
}
