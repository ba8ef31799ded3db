package timer

import (
	"math/rand"
)

const ElectionTimeoutKind = "election"

// ElectionTimer is a rearmable one-shot timeout with a duration drawn from
// [minMilliseconds, maxMilliseconds] each time it is armed.
type ElectionTimer struct {
	factory         TimeoutFactory
	minMilliseconds int
	maxMilliseconds int
	current         Timeout
	lastDuration    int
}

// CreateElectionTimer creates already armed election timer.
func CreateElectionTimer(factory TimeoutFactory, minMilliseconds int, maxMilliseconds int) *ElectionTimer {
	timer := &ElectionTimer{
		factory:         factory,
		minMilliseconds: minMilliseconds,
		maxMilliseconds: maxMilliseconds,
	}
	timer.Renew()
	return timer
}

// Renew discards pending signal and arms timer with freshly randomized duration.
func (timer *ElectionTimer) Renew() {
	timer.Stop()
	timer.lastDuration = timer.randomDuration()
	timer.current = timer.factory.Timeout(ElectionTimeoutKind, timer.lastDuration)
}

// Stop disarms timer until next Renew.
func (timer *ElectionTimer) Stop() {
	if timer.current != nil {
		timer.current.Cancel()
		timer.current = nil
	}
}

// Fired reports without blocking whether timer fired since last Renew.
func (timer *ElectionTimer) Fired() bool {
	if timer.current == nil {
		return false
	}

	select {
	case <-timer.current.Done():
		return true
	default:
		return false
	}
}

// Done returns channel closed when armed timer fires, nil channel (blocking forever) when stopped.
func (timer *ElectionTimer) Done() <-chan struct{} {
	if timer.current == nil {
		return nil
	}
	return timer.current.Done()
}

func (timer *ElectionTimer) LastDuration() int {
	return timer.lastDuration
}

func (timer *ElectionTimer) randomDuration() int {
	if timer.maxMilliseconds <= timer.minMilliseconds {
		return timer.minMilliseconds
	}
	return timer.minMilliseconds + rand.Intn(timer.maxMilliseconds-timer.minMilliseconds+1)
}
