package notify

import (
	"context"
	"sync"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-access-notifier/core"
)

// DefaultDispatchTimeout bounds one detached broadcast.
const DefaultDispatchTimeout = 30 * time.Second

// AsyncDispatcher runs each broadcast on a goroutine whose lifetime is
// detached from the caller. The dispatch context derives from
// context.Background so the webhook response never cancels an in-flight
// broadcast; a bounded timeout keeps hung provider calls from leaking.
type AsyncDispatcher struct {
	broadcaster core.AlertBroadcaster
	timeout     time.Duration
	logger      core.Logger
	wg          sync.WaitGroup
}

func NewAsyncDispatcher(broadcaster core.AlertBroadcaster, timeout time.Duration, logger core.Logger) *AsyncDispatcher {
	if timeout <= 0 {
		timeout = DefaultDispatchTimeout
	}
	return &AsyncDispatcher{
		broadcaster: broadcaster,
		timeout:     timeout,
		logger:      glog.Ensure(logger),
	}
}

func (d *AsyncDispatcher) Dispatch(_ context.Context, alert core.Alert) {
	if d == nil || d.broadcaster == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.broadcaster.Broadcast(ctx, alert); err != nil {
			d.logger.Error("alert broadcast failed",
				"event_id", alert.EventID,
				"severity", string(alert.Severity),
				"error", err,
			)
		}
	}()
}

// Wait blocks until every in-flight broadcast finishes. Used during shutdown
// and by tests.
func (d *AsyncDispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}

var _ core.AlertDispatcher = (*AsyncDispatcher)(nil)
