package eventbus

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type testEvent struct{ name string }

func (e testEvent) Name() string { return e.name }

func TestBus_PublishDeliversToSubscribers(t *testing.T) {
	bus := New(zap.NewNop(), time.Second)

	var calls int32
	bus.Subscribe("a", func(ctx context.Context, event Event) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	bus.Subscribe("a", func(ctx context.Context, event Event) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("слушатель упал")
	})
	bus.Subscribe("b", func(ctx context.Context, event Event) error {
		t.Error("слушатель другого события не должен вызываться")
		return nil
	})

	bus.Publish(context.Background(), testEvent{name: "a"})
	bus.Wait()

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestBus_ListenerGetsDeadline(t *testing.T) {
	bus := New(zap.NewNop(), 50*time.Millisecond)

	var hadDeadline atomic.Bool
	bus.Subscribe("a", func(ctx context.Context, event Event) error {
		_, ok := ctx.Deadline()
		hadDeadline.Store(ok)
		return nil
	})

	bus.Publish(context.Background(), testEvent{name: "a"})
	bus.Wait()

	assert.True(t, hadDeadline.Load())
}
