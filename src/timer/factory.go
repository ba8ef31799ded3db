package timer

import (
	"sync"
	"time"
)

type regularTimeout struct {
	timer *time.Timer
	done  chan struct{}
	once  sync.Once
}

func (timeout *regularTimeout) Done() <-chan struct{} {
	return timeout.done
}

func (timeout *regularTimeout) Cancel() {
	timeout.timer.Stop()
}

// RegularTimeoutFactory creates timeouts backed by time.AfterFunc.
type RegularTimeoutFactory struct{}

func (RegularTimeoutFactory) Timeout(_ string, milliseconds int) Timeout {
	timeout := &regularTimeout{done: make(chan struct{})}
	timeout.timer = time.AfterFunc(time.Duration(milliseconds)*time.Millisecond, func() {
		timeout.once.Do(func() { close(timeout.done) })
	})
	return timeout
}
