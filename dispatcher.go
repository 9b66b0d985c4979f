package nexusflow

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/youngzilla0/nexusflow/internal/channel"
)

// Dispatcher multiplexes one actor's outputs onto its subscribed
// downstream channels. Subscribers are kept in registration order,
// which is the BFS edge order, so Broadcast is observationally a
// sequence of SendTo calls in that order, except on a full channel:
// Broadcast drops there, while SendTo blocks.
//
// Broadcast uses try-push and drops on a full channel: a slow consumer
// must not stall the producing worker. Fan-out shares the payload cell
// (a reference-count bump per subscriber); COW keeps the sharing safe.
// A node configured with cloneMessage gets a deep copy per subscriber
// instead.
type Dispatcher struct {
	moduleName string
	log        *slog.Logger
	clone      bool
	metrics    *Metrics

	order []string
	subs  map[string]*channel.Channel[Message]

	drops atomic.Uint64
}

func newDispatcher(moduleName string, log *slog.Logger, clone bool, metrics *Metrics) *Dispatcher {
	return &Dispatcher{
		moduleName: moduleName,
		log:        log.With("module", moduleName),
		clone:      clone,
		metrics:    metrics,
		subs:       map[string]*channel.Channel[Message]{},
	}
}

func (d *Dispatcher) addSubscriber(name string, ch *channel.Channel[Message]) error {
	if _, exists := d.subs[name]; exists {
		return fmt.Errorf("output channel %q already registered", name)
	}
	d.order = append(d.order, name)
	d.subs[name] = ch
	return nil
}

// Broadcast pushes msg to every subscriber, consuming the caller's
// handle. Full subscribers are skipped and counted as drops.
func (d *Dispatcher) Broadcast(msg Message) {
	for _, name := range d.order {
		out := d.fanOut(msg)
		if d.subs[name].TryPush(out) {
			d.metrics.observeDispatch(d.moduleName, name)
			continue
		}
		out.release()
		d.drops.Add(1)
		d.metrics.observeDrop(d.moduleName, name)
		d.log.Debug("dropped message on full channel", "channel", name, "messageId", msg.GetMeta().MessageID)
	}
	msg.release()
}

// SendTo pushes msg to the named subscriber only, blocking until there
// is room or the channel shuts down. Unknown names are a no-op. The
// caller's handle is consumed.
func (d *Dispatcher) SendTo(name string, msg Message) {
	ch, ok := d.subs[name]
	if !ok {
		msg.release()
		return
	}
	out := d.fanOut(msg)
	if ch.Push(out) {
		d.metrics.observeDispatch(d.moduleName, name)
	} else {
		out.release()
	}
	msg.release()
}

func (d *Dispatcher) fanOut(msg Message) Message {
	if d.clone {
		return msg.Clone()
	}
	return msg.Copy()
}

// Drops returns the number of messages dropped on full channels.
func (d *Dispatcher) Drops() uint64 {
	return d.drops.Load()
}

// Subscribers returns the subscriber names in registration order.
func (d *Dispatcher) Subscribers() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}
