package matching

import (
	"sync"

	"go.uber.org/zap"
)

// Dispatcher runs detached side effects (pushes, emails). Their failures are
// logged and never reach the operation that started them.
type Dispatcher struct {
	wg  sync.WaitGroup
	log *zap.Logger
}

func NewDispatcher(log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{log: log}
}

// Go runs fn in its own goroutine. A returned error or panic is logged.
func (d *Dispatcher) Go(task string, fn func() error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				d.log.Error("detached task panicked", zap.String("task", task), zap.Any("panic", rec))
			}
		}()
		if err := fn(); err != nil {
			d.log.Warn("detached task failed", zap.String("task", task), zap.Error(err))
		}
	}()
}

// Wait blocks until every task started so far has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
