package attendance

import (
	"sync"
	"time"
)

// Notifier receives user-facing messages produced by the reconciler. One
// capture can trigger both a success and a warning when the image contains
// first-time and repeat faces at once.
type Notifier interface {
	Success(message string)
	Warning(message string)
	Error(message string)
}

// Notification is a collected message with its severity and timestamp.
type Notification struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Collector buffers notifications so a caller can drain them after a
// reconciliation pass. Used by the web handlers to ship messages to the
// browser alongside the recognition response.
type Collector struct {
	mu            sync.Mutex
	notifications []Notification
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Success(message string) { c.add("success", message) }
func (c *Collector) Warning(message string) { c.add("warning", message) }
func (c *Collector) Error(message string)   { c.add("error", message) }

func (c *Collector) add(level, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications = append(c.notifications, Notification{
		Level:   level,
		Message: message,
		Time:    time.Now(),
	})
}

// Drain returns the buffered notifications and empties the buffer.
func (c *Collector) Drain() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.notifications
	c.notifications = nil
	return out
}
