package listeners

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"fleet-system/internal/entities"
	"fleet-system/internal/events"
	"fleet-system/internal/services"
	"fleet-system/pkg/eventbus"
)

type recordingCache struct {
	mu      sync.Mutex
	deleted []string
}

func (c *recordingCache) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (c *recordingCache) Get(context.Context, string) (string, error) { return "", nil }
func (c *recordingCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, keys...)
	return nil
}

func TestLaborListener_DropsSummaryOnChange(t *testing.T) {
	cache := &recordingCache{}
	bus := eventbus.New(zap.NewNop(), time.Second)
	NewLaborListener(cache, zap.NewNop()).Register(bus)

	bus.Publish(context.Background(), events.TimeEntryStartedEvent{Entry: entities.TimeEntry{WorkOrderID: 5}})
	bus.Publish(context.Background(), events.TimeEntryClosedEvent{Entry: entities.TimeEntry{WorkOrderID: 6}})
	bus.Wait()

	assert.ElementsMatch(t, []string{services.SummaryCacheKey(5), services.SummaryCacheKey(6)}, cache.deleted)
}
