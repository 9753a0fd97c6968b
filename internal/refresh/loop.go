// Package refresh drives refresh cycles from explicit control-change events.
package refresh

import (
	"context"
	"sync"

	"github.com/mr1hm/go-quake-dashboard/internal/models"
	"github.com/mr1hm/go-quake-dashboard/internal/present"
)

type Refresher interface {
	Refresh(ctx context.Context, controls models.Controls) present.View
}

// RenderFunc receives every completed view and replaces whatever was shown before.
type RenderFunc func(present.View)

// Loop runs one refresh per submitted control change on a single goroutine,
// so cycles never overlap.
type Loop struct {
	refresher Refresher
	render    RenderFunc
	changes   chan models.Controls
	done      chan struct{}
	wg        sync.WaitGroup
}

func NewLoop(refresher Refresher, render RenderFunc, bufferSize int) *Loop {
	return &Loop{
		refresher: refresher,
		render:    render,
		changes:   make(chan models.Controls, bufferSize),
		done:      make(chan struct{}),
	}
}

func (l *Loop) Start(ctx context.Context) {
	l.wg.Add(1)
	go l.run(ctx)
}

func (l *Loop) run(ctx context.Context) {
	defer l.wg.Done()
	defer close(l.done)

	for {
		select {
		case <-ctx.Done():
			return
		case controls, ok := <-l.changes:
			if !ok {
				return
			}
			l.render(l.refresher.Refresh(ctx, controls))
		}
	}
}

// Submit queues a control change and reports false once the loop has exited.
// It must not be called after Stop.
func (l *Loop) Submit(controls models.Controls) bool {
	select {
	case l.changes <- controls:
		return true
	case <-l.done:
		return false
	}
}

// Stop waits for the loop to exit. Queued changes are still refreshed while
// the loop's context is live; once it is cancelled they are dropped.
func (l *Loop) Stop() {
	close(l.changes)
	l.wg.Wait()
}
