// Package modules ships the built-in module set: a generator source, a
// pass-through transformer, and a collector sink. They are small enough
// to demo a pipeline from a YAML file and double as test fixtures.
package modules

import (
	"github.com/youngzilla0/nexusflow"
)

// PassThrough forwards every input message with the payload untouched,
// re-tagging the metadata with its own name so downstream fusion stages
// can tell which upstream a message came through. The message id is
// preserved.
type PassThrough struct {
	name string
}

// NewPassThrough creates a pass-through module.
func NewPassThrough(name string) *PassThrough {
	return &PassThrough{name: name}
}

func (p *PassThrough) Configure(cfg nexusflow.Config) error { return nil }

func (p *PassThrough) Init() error { return nil }

func (p *PassThrough) Process(ctx *nexusflow.ProcessingContext) nexusflow.ProcessStatus {
	msg, err := ctx.TakeInput()
	if err != nil || !msg.HasData() {
		return nexusflow.ProcessFailedGetInput
	}
	msg.Meta().SourceName = p.name
	ctx.AddOutput(msg)
	return nexusflow.ProcessOK
}

func (p *PassThrough) DeInit() error { return nil }
