package starlark

import (
	"log/slog"

	"go.starlark.net/starlark"
)

const defaultIdleThreads = 8

// ThreadPool hands out Starlark threads for loading client files and
// calling formatter functions. Formatters may call each other, so one
// dispatch can hold several threads at once; the pool only bounds how many
// idle threads are kept.
type ThreadPool struct {
	idle   chan *starlark.Thread
	logger *slog.Logger
}

// NewThreadPool keeps up to idle threads for reuse. Starlark print() output
// goes to logger at debug level.
func NewThreadPool(idle int, logger *slog.Logger) *ThreadPool {
	if idle <= 0 {
		idle = defaultIdleThreads
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ThreadPool{
		idle:   make(chan *starlark.Thread, idle),
		logger: logger,
	}
}

// Get returns an idle thread or a new one. name shows up in Starlark
// backtraces.
func (p *ThreadPool) Get(name string) *starlark.Thread {
	select {
	case th := <-p.idle:
		th.Name = name
		return th
	default:
		return &starlark.Thread{Name: name, Print: p.print}
	}
}

// Put releases th. It is dropped when the pool already holds enough idle
// threads.
func (p *ThreadPool) Put(th *starlark.Thread) {
	th.Name = ""
	select {
	case p.idle <- th:
	default:
	}
}

// Idle returns the number of threads waiting for reuse.
func (p *ThreadPool) Idle() int { return len(p.idle) }

func (p *ThreadPool) print(th *starlark.Thread, msg string) {
	p.logger.Debug("starlark print", "thread", th.Name, "msg", msg)
}
