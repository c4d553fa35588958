package planner

import (
	"sync"

	errx "github.com/triptrop/client/internal/core/error"
	"github.com/triptrop/client/internal/resource"
	logx "github.com/triptrop/client/pkg/logger"
)

// failureLogger returns a subscriber that logs each newly recorded failure
// of a resource kind once.
func failureLogger[T any](kind string) func(resource.State[T]) {
	var (
		mu   sync.Mutex
		last *errx.Error
	)
	return func(s resource.State[T]) {
		mu.Lock()
		defer mu.Unlock()
		if s.Err == nil || s.Err == last {
			last = s.Err
			return
		}
		last = s.Err
		ev := logx.Warn()
		if s.Err.Kind == errx.KindServer {
			ev = logx.Error()
		}
		ev.Str("resource", kind).
			Str("kind", s.Err.Kind.String()).
			Int("status", s.Err.Status).
			Uint64("version", s.Version).
			Msg(s.Err.Message)
	}
}
