package nexusflow

import "fmt"

// PipelineBuilder constructs a pipeline programmatically: add module
// instances, connect them by name, build. The builder produces the same
// validated graph the declarative loader does.
type PipelineBuilder struct {
	name    string
	nodes   map[string]*Node
	order   []string
	edges   [][2]string
	errs    []error
}

// NewPipelineBuilder creates a builder for a pipeline with the given
// graph name.
func NewPipelineBuilder(name string) *PipelineBuilder {
	return &PipelineBuilder{
		name:  name,
		nodes: map[string]*Node{},
	}
}

// AddModule registers a module instance under name with an empty
// configuration.
func (b *PipelineBuilder) AddModule(name string, module Module) *PipelineBuilder {
	return b.AddModuleWithConfig(name, module, NewConfig())
}

// AddModuleWithConfig registers a module instance with its node
// configuration.
func (b *PipelineBuilder) AddModuleWithConfig(name string, module Module, cfg Config) *PipelineBuilder {
	if name == "" || module == nil {
		b.errs = append(b.errs, fmt.Errorf("%w: module name and instance are required", ErrInvalidConfig))
		return b
	}
	if _, exists := b.nodes[name]; exists {
		b.errs = append(b.errs, fmt.Errorf("%w: %q", ErrDuplicateNode, name))
		return b
	}
	b.nodes[name] = &Node{Name: name, Module: module, Config: cfg}
	b.order = append(b.order, name)
	return b
}

// Connect declares a directed edge between two previously added
// modules.
func (b *PipelineBuilder) Connect(src, dst string) *PipelineBuilder {
	b.edges = append(b.edges, [2]string{src, dst})
	return b
}

// Build assembles and validates the graph, returning the pipeline.
func (b *PipelineBuilder) Build(opts ...Option) (*Pipeline, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}

	graph := NewGraph(b.name)
	for _, name := range b.order {
		graph.AddNode(b.nodes[name])
	}
	for _, edge := range b.edges {
		src, ok := b.nodes[edge[0]]
		if !ok {
			return nil, fmt.Errorf("%w: connection references %q", ErrNodeNotFound, edge[0])
		}
		dst, ok := b.nodes[edge[1]]
		if !ok {
			return nil, fmt.Errorf("%w: connection references %q", ErrNodeNotFound, edge[1])
		}
		graph.AddEdge(src, dst)
	}

	if err := graph.Validate(); err != nil {
		return nil, err
	}
	return NewPipeline(graph, opts...), nil
}
