package nexusflow

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Declarative configuration document. The top-level `graph:` map names
// the pipeline, declares its modules with their class and per-node
// config, and lists the directed connections:
//
//	graph:
//	  name: my-pipeline
//	  modules:
//	    - name: src
//	      class: Generator
//	      config: { intervalMs: 10 }
//	    - name: sink
//	      class: Collector
//	  connections:
//	    - { from: src, to: sink }
type yamlDocument struct {
	Graph *yamlGraph `yaml:"graph"`
}

type yamlGraph struct {
	Name        string           `yaml:"name"`
	Modules     []yamlModule     `yaml:"modules"`
	Connections []yamlConnection `yaml:"connections"`
}

type yamlModule struct {
	Name   string         `yaml:"name"`
	Class  string         `yaml:"class"`
	Config map[string]any `yaml:"config"`
}

type yamlConnection struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// LoadGraphFromYaml parses and validates a declarative configuration
// file into a Graph. Nodes carry their module class name and config;
// module instances are resolved through the factory at pipeline Init.
func LoadGraphFromYaml(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}
	return ParseGraphYaml(data)
}

// ParseGraphYaml builds a Graph from a YAML document.
func ParseGraphYaml(data []byte) (*Graph, error) {
	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if doc.Graph == nil {
		return nil, fmt.Errorf("%w: document must contain a 'graph' root node", ErrInvalidConfig)
	}
	if doc.Graph.Name == "" {
		return nil, fmt.Errorf("%w: graph must have a 'name'", ErrInvalidConfig)
	}
	if len(doc.Graph.Modules) == 0 {
		return nil, fmt.Errorf("%w: 'modules' section is missing or empty", ErrInvalidConfig)
	}

	graph := NewGraph(doc.Graph.Name)

	nodes := make(map[string]*Node, len(doc.Graph.Modules))
	for _, m := range doc.Graph.Modules {
		if m.Name == "" || m.Class == "" {
			return nil, fmt.Errorf("%w: every module needs 'name' and 'class'", ErrInvalidConfig)
		}
		if _, exists := nodes[m.Name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateNode, m.Name)
		}
		cfg := NewConfig()
		for key, value := range m.Config {
			cfg.Add(key, value)
		}
		node := &Node{Name: m.Name, ClassName: m.Class, Config: cfg}
		nodes[m.Name] = node
		graph.AddNode(node)
	}

	for _, conn := range doc.Graph.Connections {
		src, ok := nodes[conn.From]
		if !ok {
			return nil, fmt.Errorf("%w: connection %q -> %q references unknown module %q",
				ErrNodeNotFound, conn.From, conn.To, conn.From)
		}
		dst, ok := nodes[conn.To]
		if !ok {
			return nil, fmt.Errorf("%w: connection %q -> %q references unknown module %q",
				ErrNodeNotFound, conn.From, conn.To, conn.To)
		}
		graph.AddEdge(src, dst)
	}

	if err := graph.Validate(); err != nil {
		return nil, err
	}
	return graph, nil
}
