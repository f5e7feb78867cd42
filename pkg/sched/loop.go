package sched

import (
	"sync"
	"time"

	"src.circular.dev/pkg/logutil"
)

var logger = logutil.GetLogger("[sched] ")

// Buffer size of the task channel.
const taskChSize = 128

// Loop is a Scheduler backed by real timers. Timer callbacks and functions
// passed to Do are run serially by Run, so they may manipulate shared state
// without synchronization.
type Loop struct {
	taskCh   chan func()
	returnCh chan struct{}

	mu     sync.Mutex
	next   Handle
	timers map[Handle]*time.Ticker
	stops  map[Handle]chan struct{}
}

var _ Scheduler = (*Loop)(nil)

// NewLoop creates a new Loop.
func NewLoop() *Loop {
	return &Loop{
		taskCh:   make(chan func(), taskChSize),
		returnCh: make(chan struct{}, 1),
		timers:   map[Handle]*time.Ticker{},
		stops:    map[Handle]chan struct{}{},
	}
}

// Do posts fn to be run by the loop. It may block if the internal buffer is
// full.
func (lp *Loop) Do(fn func()) { lp.taskCh <- fn }

// Return requests Run to return. It never blocks.
func (lp *Loop) Return() {
	select {
	case lp.returnCh <- struct{}{}:
	default:
	}
}

// Run runs posted functions and timer callbacks until Return is called. When
// it returns, all timers are stopped.
func (lp *Loop) Run() {
	defer lp.stopAll()
	for {
		select {
		case fn := <-lp.taskCh:
			// Consume all tasks in the channel before checking for a return
			// request.
		consumeAllTasks:
			for {
				fn()
				select {
				case <-lp.returnCh:
					return
				default:
				}
				select {
				case fn = <-lp.taskCh:
				default:
					break consumeAllTasks
				}
			}
		case <-lp.returnCh:
			return
		}
	}
}

// SetInterval implements Scheduler. Ticks that arrive while an earlier tick
// of the same timer is still queued are dropped.
func (lp *Loop) SetInterval(fn func(), d time.Duration) Handle {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	lp.next++
	h := lp.next
	ticker := time.NewTicker(d)
	stop := make(chan struct{})
	lp.timers[h] = ticker
	lp.stops[h] = stop

	queued := make(chan struct{}, 1)
	go func() {
		for {
			select {
			case <-ticker.C:
			case <-stop:
				return
			}
			select {
			case queued <- struct{}{}:
			default:
				logger.Printf("timer %d: dropping a tick", h)
				continue
			}
			lp.Do(func() {
				<-queued
				if lp.active(h) {
					fn()
				}
			})
		}
	}()
	return h
}

// ClearInterval implements Scheduler.
func (lp *Loop) ClearInterval(h Handle) {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	lp.clear(h)
}

func (lp *Loop) active(h Handle) bool {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	_, ok := lp.timers[h]
	return ok
}

// Must be called with lp.mu held.
func (lp *Loop) clear(h Handle) {
	if ticker, ok := lp.timers[h]; ok {
		ticker.Stop()
		close(lp.stops[h])
		delete(lp.timers, h)
		delete(lp.stops, h)
	}
}

func (lp *Loop) stopAll() {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	for h := range lp.timers {
		lp.clear(h)
	}
}
