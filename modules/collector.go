package modules

import (
	"sync"
	"time"

	"github.com/youngzilla0/nexusflow"
)

// Collector is a sink module that keeps every received message for
// inspection. Useful as a pipeline terminus in tests and demos.
type Collector struct {
	name string

	mu       sync.Mutex
	messages []nexusflow.Message
}

// NewCollector creates a collector module.
func NewCollector(name string) *Collector {
	return &Collector{name: name}
}

func (c *Collector) Configure(cfg nexusflow.Config) error { return nil }

func (c *Collector) Init() error { return nil }

func (c *Collector) Process(ctx *nexusflow.ProcessingContext) nexusflow.ProcessStatus {
	msg, err := ctx.TakeInput()
	if err != nil || !msg.HasData() {
		return nexusflow.ProcessFailedGetInput
	}
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
	return nexusflow.ProcessOK
}

func (c *Collector) DeInit() error { return nil }

// Count returns the number of collected messages.
func (c *Collector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Messages returns a snapshot of the collected messages.
func (c *Collector) Messages() []nexusflow.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]nexusflow.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// WaitFor polls until at least n messages arrived or the timeout
// elapses, reporting whether the target was reached.
func (c *Collector) WaitFor(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if c.Count() >= n {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return c.Count() >= n
}
