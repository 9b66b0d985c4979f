package modules

import (
	"time"

	"github.com/youngzilla0/nexusflow"
)

// Generator is a source module producing a sequence of int64 payloads.
//
// Config keys: `intervalMs` paces production (default 10ms; the runtime
// itself never paces a source), `count` bounds the number of messages
// (0, the default, means unbounded).
type Generator struct {
	name     string
	interval time.Duration
	count    int64

	produced int64
}

// NewGenerator creates a generator module.
func NewGenerator(name string) *Generator {
	return &Generator{name: name}
}

func (g *Generator) Configure(cfg nexusflow.Config) error {
	g.interval = time.Duration(nexusflow.GetOr(cfg, "intervalMs", int64(10))) * time.Millisecond
	g.count = nexusflow.GetOr(cfg, "count", int64(0))
	return nil
}

func (g *Generator) Init() error {
	g.produced = 0
	return nil
}

func (g *Generator) Process(ctx *nexusflow.ProcessingContext) nexusflow.ProcessStatus {
	if g.count > 0 && g.produced >= g.count {
		// Exhausted; keep the loop cheap until the pipeline stops.
		pause := g.interval
		if pause <= 0 {
			pause = time.Millisecond
		}
		time.Sleep(pause)
		return nexusflow.ProcessOK
	}

	ctx.AddOutput(nexusflow.MakeMessage(g.produced, g.name))
	g.produced++

	if g.interval > 0 {
		time.Sleep(g.interval)
	}
	return nexusflow.ProcessOK
}

// Produced returns how many messages the generator has emitted.
func (g *Generator) Produced() int64 { return g.produced }

func (g *Generator) DeInit() error { return nil }
