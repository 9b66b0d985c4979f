package nexusflow

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/youngzilla0/nexusflow/internal/channel"
)

// DefaultChannelCapacity bounds every edge channel unless overridden
// with WithChannelCapacity.
const DefaultChannelCapacity = 5

// Pipeline materializes a validated graph into actors and channels and
// coordinates their lifecycle: Init -> Start -> Stop -> DeInit. The
// pipeline owns the channels; actors hold non-owning views, which keeps
// channel lifetime independent of worker lifetime during shutdown.
type Pipeline struct {
	id       uuid.UUID
	log      *slog.Logger
	graph    *Graph
	capacity int
	metrics  *Metrics

	channels   map[string]*channel.Channel[Message]
	actors     map[string]*ModuleActor
	actorOrder []string

	initialized bool
	started     bool
}

// NewPipeline wraps a graph into an un-initialized pipeline. The graph
// is validated during Init.
func NewPipeline(graph *Graph, opts ...Option) *Pipeline {
	p := &Pipeline{
		id:       uuid.New(),
		log:      NullLogger(),
		graph:    graph,
		capacity: DefaultChannelCapacity,
		channels: map[string]*channel.Channel[Message]{},
		actors:   map[string]*ModuleActor{},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With("pipeline", graph.Name(), "pipelineId", p.id.String())
	return p
}

// CreateFromYaml loads a declarative configuration document and wraps
// the resulting graph into a pipeline.
func CreateFromYaml(path string, opts ...Option) (*Pipeline, error) {
	graph, err := LoadGraphFromYaml(path)
	if err != nil {
		return nil, err
	}
	return NewPipeline(graph, opts...), nil
}

// Graph returns the underlying topology.
func (p *Pipeline) Graph() *Graph { return p.graph }

// Actor returns the actor for the named node, or nil before Init.
func (p *Pipeline) Actor(name string) *ModuleActor { return p.actors[name] }

// Init validates the graph, materializes one actor per node and one
// bounded channel per unique edge, and initializes every module in
// topological order. On a module Init failure the pipeline aborts and
// leaves previously initialized modules as they are; the caller
// compensates with DeInit.
func (p *Pipeline) Init() error {
	if err := p.graph.Validate(); err != nil {
		return fmt.Errorf("pipeline init: %w", err)
	}

	edges := p.graph.EdgeListBFS()
	p.log.Debug("materializing graph", "edges", len(edges))

	for _, edge := range edges {
		src, err := p.getOrCreateActor(edge.Src)
		if err != nil {
			return err
		}
		dst, err := p.getOrCreateActor(edge.Dst)
		if err != nil {
			return err
		}

		name := edge.Name()
		if _, exists := p.channels[name]; exists {
			// BFS already collapses duplicate (src,dst) pairs; a repeat
			// here would double-register the endpoints.
			continue
		}
		ch := channel.New[Message](p.capacity)
		p.channels[name] = ch

		if err := src.AddOutputQueue(name, ch); err != nil {
			return fmt.Errorf("pipeline init: %w", err)
		}
		if err := dst.AddInputQueue(name, ch); err != nil {
			return fmt.Errorf("pipeline init: %w", err)
		}
	}

	// Edge-less graphs (a single node) still get their actor.
	for _, name := range p.graph.order {
		if _, err := p.getOrCreateActor(p.graph.nodes[name]); err != nil {
			return err
		}
	}

	for _, name := range p.actorOrder {
		if err := p.actors[name].Init(); err != nil {
			return fmt.Errorf("pipeline init: module %s: %w", name, err)
		}
		p.log.Debug("module initialized", "module", name)
	}

	p.initialized = true
	return nil
}

// getOrCreateActor resolves the node's module (pre-supplied instance or
// factory class) and registers its actor, keyed by first appearance in
// BFS order.
func (p *Pipeline) getOrCreateActor(node *Node) (*ModuleActor, error) {
	if actor, ok := p.actors[node.Name]; ok {
		return actor, nil
	}

	module := node.Module
	if module == nil {
		created, err := CreateModule(node.ClassName, node.Name, node.Config)
		if err != nil {
			return nil, fmt.Errorf("pipeline init: node %s: %w", node.Name, err)
		}
		module = created
	} else if err := module.Configure(node.Config); err != nil {
		return nil, fmt.Errorf("pipeline init: configure %s: %w", node.Name, err)
	}

	actor := newModuleActor(node.Name, module, node.Config, p.log, p.metrics)
	p.actors[node.Name] = actor
	p.actorOrder = append(p.actorOrder, node.Name)
	return actor, nil
}

// Start launches every actor in topological order. A failure aborts
// and leaves the pipeline partially started; Stop still works on the
// started subset.
func (p *Pipeline) Start() error {
	if !p.initialized {
		return ErrUninitialized
	}
	if p.started {
		return ErrAlreadyStarted
	}
	p.log.Info("starting pipeline")
	for _, name := range p.actorOrder {
		if err := p.actors[name].Start(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrFailedToStartWorker, name, err)
		}
	}
	p.started = true
	return nil
}

// Stop shuts down every channel first, which unblocks all worker
// waits, then stops the actors in topological order. Every actor is
// visited even if one fails; the errors are aggregated so no worker is
// left running behind an early return.
func (p *Pipeline) Stop() error {
	if !p.initialized {
		return ErrUninitialized
	}
	p.log.Info("stopping pipeline")

	for name, ch := range p.channels {
		ch.Shutdown()
		p.log.Debug("channel shut down", "channel", name)
	}

	var errs error
	for _, name := range p.actorOrder {
		if err := p.actors[name].Stop(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s: %v", ErrFailedToStopWorker, name, err))
		}
	}
	p.started = false
	return errs
}

// DeInit tears the pipeline down: modules de-initialize in reverse
// topological order, then actors and channels are dropped. Aborts on
// the first module failure.
func (p *Pipeline) DeInit() error {
	if !p.initialized {
		return nil
	}
	p.log.Info("de-initializing pipeline")

	for i := len(p.actorOrder) - 1; i >= 0; i-- {
		name := p.actorOrder[i]
		if err := p.actors[name].DeInit(); err != nil {
			return fmt.Errorf("pipeline deinit: module %s: %w", name, err)
		}
	}

	p.actors = map[string]*ModuleActor{}
	p.actorOrder = nil
	p.channels = map[string]*channel.Channel[Message]{}
	p.initialized = false
	return nil
}
