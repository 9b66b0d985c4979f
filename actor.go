package nexusflow

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/youngzilla0/nexusflow/internal/channel"
)

// ModuleActor binds one module to its runtime: a worker, a dispatcher,
// and the goroutine that drives them. Actors are created during
// pipeline Init and live until DeInit. Channel endpoints are registered
// by the pipeline; the actor holds non-owning views.
type ModuleActor struct {
	name       string
	module     Module
	cfg        Config
	log        *slog.Logger
	worker     *worker
	dispatcher *Dispatcher

	mu      sync.Mutex
	started bool
	done    chan struct{}
}

func newModuleActor(name string, module Module, cfg Config, log *slog.Logger, metrics *Metrics) *ModuleActor {
	clone := GetOr(cfg, ConfigKeyCloneMessage, false)
	dispatcher := newDispatcher(name, log, clone, metrics)
	return &ModuleActor{
		name:       name,
		module:     module,
		cfg:        cfg,
		log:        log.With("module", name),
		worker:     newWorker(name, module, cfg, log, dispatcher),
		dispatcher: dispatcher,
	}
}

// Name returns the actor's node name.
func (a *ModuleActor) Name() string { return a.name }

// Module returns the module driven by this actor.
func (a *ModuleActor) Module() Module { return a.module }

// Dispatcher exposes the actor's output multiplexer.
func (a *ModuleActor) Dispatcher() *Dispatcher { return a.dispatcher }

// AddInputQueue registers an inbound channel view on the worker.
func (a *ModuleActor) AddInputQueue(name string, ch *channel.Channel[Message]) error {
	return a.worker.addInput(name, ch)
}

// AddOutputQueue registers an outbound channel view on the dispatcher.
func (a *ModuleActor) AddOutputQueue(name string, ch *channel.Channel[Message]) error {
	return a.dispatcher.addSubscriber(name, ch)
}

// Init forwards to the module.
func (a *ModuleActor) Init() error { return a.module.Init() }

// DeInit forwards to the module.
func (a *ModuleActor) DeInit() error { return a.module.DeInit() }

// Start spawns the worker goroutine.
func (a *ModuleActor) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return fmt.Errorf("%w: actor %s", ErrAlreadyStarted, a.name)
	}
	a.started = true
	a.worker.stop.Store(false)
	a.done = make(chan struct{})
	go func() {
		defer close(a.done)
		a.worker.run()
	}()
	a.log.Debug("actor started")
	return nil
}

// Stop asks the worker to stop and waits for its goroutine to exit.
// Blocked channel waits must already have been broken by channel
// shutdown, which the pipeline performs before stopping actors.
func (a *ModuleActor) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.started {
		return fmt.Errorf("%w: actor %s", ErrAlreadyStopped, a.name)
	}
	a.worker.requestStop()
	<-a.done
	a.started = false
	a.log.Debug("actor stopped")
	return nil
}
