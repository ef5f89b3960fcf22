package dispatch

import (
	"reflect"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/contract/spec"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the dispatch package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the dispatch package's logger.
// This must be called before any synthesis.
func SetLogger(l *zap.Logger) {
	logger = l
}

func zapContract(s *spec.Spec) zap.Field {
	return zap.String("contract", s.Name())
}

func zapType(t reflect.Type) zap.Field {
	return zap.Stringer("type", t)
}

func zapSlots(n int) zap.Field {
	return zap.Int("slots", n)
}
