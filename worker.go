package nexusflow

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/youngzilla0/nexusflow/internal/channel"
)

// Worker tuning defaults. Per-node overrides come from the reserved
// configuration keys (batchSize, batchTimeoutMs, fusionTimeoutMs).
const (
	defaultMaxBatchSize  = 4
	defaultBatchTimeout  = 100 * time.Millisecond
	defaultPollInterval  = time.Millisecond
	defaultFusionTimeout = time.Minute
)

// worker drives one module: it pulls inputs, invokes the module, and
// forwards outputs through the actor's dispatcher. The loop shape is
// picked once at start: a source loop (no inputs), the free-running
// batch loop, or the synchronized fan-in (fusion) loop.
type worker struct {
	moduleName string
	module     Module
	cfg        Config
	log        *slog.Logger
	dispatcher *Dispatcher

	inputOrder []string
	inputs     map[string]*channel.Channel[Message]

	stop atomic.Bool

	maxBatchSize  int
	batchTimeout  time.Duration
	pollInterval  time.Duration
	fusionTimeout time.Duration
}

func newWorker(moduleName string, module Module, cfg Config, log *slog.Logger, dispatcher *Dispatcher) *worker {
	return &worker{
		moduleName:    moduleName,
		module:        module,
		cfg:           cfg,
		log:           log.With("module", moduleName),
		dispatcher:    dispatcher,
		inputs:        map[string]*channel.Channel[Message]{},
		maxBatchSize:  GetOr(cfg, ConfigKeyBatchSize, defaultMaxBatchSize),
		batchTimeout:  time.Duration(GetOr(cfg, ConfigKeyBatchTimeoutMs, int64(defaultBatchTimeout/time.Millisecond))) * time.Millisecond,
		pollInterval:  defaultPollInterval,
		fusionTimeout: time.Duration(GetOr(cfg, ConfigKeyFusionTimeoutMs, int64(defaultFusionTimeout/time.Millisecond))) * time.Millisecond,
	}
}

func (w *worker) addInput(name string, ch *channel.Channel[Message]) error {
	if _, exists := w.inputs[name]; exists {
		return fmt.Errorf("input channel %q already registered", name)
	}
	w.inputOrder = append(w.inputOrder, name)
	w.inputs[name] = ch
	return nil
}

// requestStop raises the stop flag. The loop observes it at the top of
// each iteration; blocked channel waits are broken by pipeline-level
// channel shutdown.
func (w *worker) requestStop() {
	w.stop.Store(true)
}

func (w *worker) stopped() bool {
	return w.stop.Load()
}

// run executes the worker loop until stop. It is the body of the
// actor's goroutine.
func (w *worker) run() {
	isSource := len(w.inputs) == 0
	isFusion := GetOr(w.cfg, ConfigKeySyncInputs, false)

	w.log.Info("worker running", "isSource", isSource, "syncInputs", isFusion)

	switch {
	case isFusion && isSource:
		w.log.Error("syncInputs set on a module with no input channels; ignoring")
		w.runSourceLoop()
	case isFusion:
		w.runFusion()
	case isSource:
		w.runSourceLoop()
	default:
		w.runBatchLoop()
	}

	w.log.Info("worker finished")
}

// runSourceLoop invokes the module once per iteration with an empty
// input. Pacing is the module's own responsibility.
func (w *worker) runSourceLoop() {
	for !w.stopped() {
		ctx := NewSingleContext(Message{})
		statuses := processBatch(w.module, []*ProcessingContext{ctx})
		w.dispatchContexts([]*ProcessingContext{ctx}, statuses)
	}
}

// runBatchLoop pulls batches from the input channels and hands them to
// the module.
func (w *worker) runBatchLoop() {
	for !w.stopped() {
		ctxs := w.pullBatch()
		if len(ctxs) == 0 {
			continue
		}
		statuses := processBatch(w.module, ctxs)
		w.dispatchContexts(ctxs, statuses)
	}
}

// pullBatch gathers up to maxBatchSize messages within batchTimeout.
//
// Phase 1 greedily drains whatever is already waiting, without
// blocking. Phase 2 polls each channel with a short blocking wait, so
// an idle worker sleeps instead of spinning, then drains the channel
// that produced non-blockingly to fill the batch faster.
func (w *worker) pullBatch() []*ProcessingContext {
	batch := make([]*ProcessingContext, 0, w.maxBatchSize)
	start := time.Now()

	for _, name := range w.inputOrder {
		ch := w.inputs[name]
		for len(batch) < w.maxBatchSize {
			msg, ok := ch.TryPop()
			if !ok {
				break
			}
			batch = append(batch, NewSingleContext(msg))
		}
		if len(batch) >= w.maxBatchSize {
			return batch
		}
	}

	for !w.stopped() {
		if len(batch) >= w.maxBatchSize {
			break
		}
		if time.Since(start) >= w.batchTimeout {
			break
		}

		progressed := false
		for _, name := range w.inputOrder {
			ch := w.inputs[name]
			msg, ok := ch.PopFor(w.pollInterval)
			if ok {
				progressed = true
				batch = append(batch, NewSingleContext(msg))
				for len(batch) < w.maxBatchSize {
					more, ok := ch.TryPop()
					if !ok {
						break
					}
					batch = append(batch, NewSingleContext(more))
				}
			}
			if len(batch) >= w.maxBatchSize {
				break
			}
			if time.Since(start) >= w.batchTimeout {
				break
			}
		}
		// Shut-down channels make PopFor return immediately; sleep so
		// the remainder of the window is not a hot spin.
		if !progressed {
			time.Sleep(w.pollInterval)
		}
	}

	return batch
}

// runFusion delivers one message per upstream with matching message id
// before invoking the module. Incomplete tuples are evicted once their
// oldest member is older than the fusion timeout.
func (w *worker) runFusion() {
	cache := map[uint64]map[string]Message{}
	expected := len(w.inputs)

	for !w.stopped() {
		popped := false
		for _, name := range w.inputOrder {
			msg, ok := w.inputs[name].TryPop()
			if !ok {
				continue
			}
			popped = true
			meta := msg.GetMeta()
			group, ok := cache[meta.MessageID]
			if !ok {
				group = map[string]Message{}
				cache[meta.MessageID] = group
			}
			group[meta.SourceName] = msg
			w.log.Debug("fusion input cached", "messageId", meta.MessageID, "source", meta.SourceName)
		}

		nowMs := uint64(time.Now().UnixMilli())
		timeoutMs := uint64(w.fusionTimeout / time.Millisecond)
		for id, group := range cache {
			if len(group) == expected {
				ctx := NewMultiContext(group)
				statuses := processBatch(w.module, []*ProcessingContext{ctx})
				w.dispatchContexts([]*ProcessingContext{ctx}, statuses)
				delete(cache, id)
				continue
			}
			if oldestTimestamp(group) < nowMs-timeoutMs {
				w.log.Warn("fusion tuple timed out, evicting", "messageId", id, "received", len(group), "expected", expected)
				for source, msg := range group {
					msg.release()
					delete(group, source)
				}
				delete(cache, id)
			}
		}

		if !popped {
			time.Sleep(w.pollInterval)
		}
	}
}

func oldestTimestamp(group map[string]Message) uint64 {
	oldest := ^uint64(0)
	for _, msg := range group {
		if ts := msg.GetMeta().Timestamp; ts < oldest {
			oldest = ts
		}
	}
	return oldest
}

// dispatchContexts forwards each context's outputs. Contexts whose
// status is not OK are skipped; a bad message never terminates the
// loop.
func (w *worker) dispatchContexts(ctxs []*ProcessingContext, statuses []ProcessStatus) {
	for i, ctx := range ctxs {
		status := ProcessOK
		if i < len(statuses) {
			status = statuses[i]
		}
		if status != ProcessOK {
			w.log.Debug("skipping dispatch", "status", status.String())
			ctx.discardInputs()
			continue
		}
		for _, msg := range ctx.CollectOutputs() {
			w.dispatcher.Broadcast(msg)
		}
		ctx.discardInputs()
	}
}
