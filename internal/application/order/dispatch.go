package order

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Task names used by order placement
const (
	TaskConfirmationEmail = "confirmation_email"
	TaskAdminEmail        = "admin_email"
	TaskNotification      = "notification"
)

// Task is one side effect run after an order has been committed
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Outcome is the result of one task
type Outcome struct {
	Name string
	Err  error
}

// OK reports whether the task succeeded
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Outcomes is the ordered list of task results
type Outcomes []Outcome

// Get returns the outcome of the named task
func (outs Outcomes) Get(name string) (Outcome, bool) {
	for _, o := range outs {
		if o.Name == name {
			return o, true
		}
	}
	return Outcome{}, false
}

// Dispatcher runs side effects concurrently and collects every result.
// A failing task never affects the others or the caller.
type Dispatcher struct {
	timeout time.Duration
	logger  *zap.Logger
}

// NewDispatcher creates a Dispatcher; timeout bounds the whole batch
func NewDispatcher(timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{timeout: timeout, logger: logger}
}

// Dispatch runs tasks and waits for all of them. The tasks get a context
// detached from ctx cancellation, so a client that disconnects right after
// the order commits does not abort its emails.
func (d *Dispatcher) Dispatch(ctx context.Context, tasks ...Task) Outcomes {
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	outcomes := make(Outcomes, len(tasks))
	var g errgroup.Group
	for i, task := range tasks {
		g.Go(func() error {
			err := runTask(runCtx, task)
			outcomes[i] = Outcome{Name: task.Name, Err: err}
			if err != nil {
				d.logger.Warn("post-order task failed",
					zap.String("task", task.Name),
					zap.Error(err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func runTask(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", task.Name, r)
		}
	}()
	return task.Run(ctx)
}
