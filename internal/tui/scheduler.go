// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package tui

import (
	"sync/atomic"
	"time"

	tea "charm.land/bubbletea/v2"
)

// redrawDebounce is the minimum spacing between coalesced re-renders.
const redrawDebounce = time.Millisecond

// commitTickInterval paces the commit animation.
const commitTickInterval = 50 * time.Millisecond

// frameScheduler coalesces redraw and animation-frame requests into single
// RedrawMsg emissions. It keeps at most one pending deadline: a request
// arriving while one is pending moves the deadline earlier, never later.
type frameScheduler struct {
	requests chan time.Time
	stop     chan struct{}
}

// newFrameScheduler starts the scheduler worker. Emitted RedrawMsg values
// go through send.
func newFrameScheduler(send func(msg tea.Msg)) *frameScheduler {
	s := &frameScheduler{
		requests: make(chan time.Time, 64),
		stop:     make(chan struct{}),
	}
	go s.run(send)
	return s
}

// RequestRedraw schedules a debounced redraw.
func (s *frameScheduler) RequestRedraw() {
	s.post(time.Now().Add(redrawDebounce))
}

// ScheduleFrameIn schedules a redraw after d (animation frames).
func (s *frameScheduler) ScheduleFrameIn(d time.Duration) {
	s.post(time.Now().Add(d))
}

func (s *frameScheduler) post(deadline time.Time) {
	select {
	case s.requests <- deadline:
	case <-s.stop:
	}
}

// Stop terminates the worker. Pending deadlines are discarded.
func (s *frameScheduler) Stop() {
	close(s.stop)
}

func (s *frameScheduler) run(send func(msg tea.Msg)) {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	var pending *time.Time
	for {
		if pending == nil {
			select {
			case deadline := <-s.requests:
				pending = &deadline
				timer.Reset(time.Until(deadline))
			case <-s.stop:
				return
			}
			continue
		}
		select {
		case deadline := <-s.requests:
			if deadline.Before(*pending) {
				pending = &deadline
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(time.Until(deadline))
			}
		case <-timer.C:
			send(RedrawMsg{})
			pending = nil
		case <-s.stop:
			timer.Stop()
			return
		}
	}
}

// commitTicker posts CommitTickMsg every commitTickInterval while running.
// The atomic flag gates the worker's lifetime.
type commitTicker struct {
	running atomic.Bool
	send    func(msg tea.Msg)
}

func newCommitTicker(send func(msg tea.Msg)) *commitTicker {
	return &commitTicker{send: send}
}

// Start launches the ticker worker. Starting an already-running ticker is
// a no-op.
func (c *commitTicker) Start() {
	if !c.running.CompareAndSwap(false, true) {
		return
	}
	go func() {
		ticker := time.NewTicker(commitTickInterval)
		defer ticker.Stop()
		for range ticker.C {
			if !c.running.Load() {
				return
			}
			c.send(CommitTickMsg{})
		}
	}()
}

// Stop ends the animation; the worker exits on its next tick.
func (c *commitTicker) Stop() {
	c.running.Store(false)
}

// Running reports whether the animation is active.
func (c *commitTicker) Running() bool {
	return c.running.Load()
}
