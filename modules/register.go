package modules

import (
	"sync"

	"github.com/youngzilla0/nexusflow"
)

var registerOnce sync.Once

// RegisterBuiltins registers the built-in module classes with the
// process-wide factory under the class names usable from declarative
// configs: Generator, PassThrough, Collector. Safe to call more than
// once.
func RegisterBuiltins() {
	registerOnce.Do(func() {
		nexusflow.MustRegisterModule("Generator", func(name string) nexusflow.Module {
			return NewGenerator(name)
		})
		nexusflow.MustRegisterModule("PassThrough", func(name string) nexusflow.Module {
			return NewPassThrough(name)
		})
		nexusflow.MustRegisterModule("Collector", func(name string) nexusflow.Module {
			return NewCollector(name)
		})
	})
}
