package nexusflow

// Module is the capability a processing unit implements to run inside a
// pipeline. A module holds only business logic; threading, channel I/O
// and lifecycle sequencing are the runtime's job.
//
// Configure is called once while the actor is constructed, with the
// node's configuration. Init runs during pipeline Init in topological
// order, DeInit during pipeline DeInit in reverse topological order.
// Process is invoked from the worker loop with a fresh ProcessingContext
// per invocation and must return within a reasonable time so Stop stays
// responsive; the runtime does not preempt it.
type Module interface {
	Configure(cfg Config) error
	Init() error
	Process(ctx *ProcessingContext) ProcessStatus
	DeInit() error
}

// BatchProcessor is an optional module capability. When implemented,
// the worker hands over whole batches; otherwise it iterates Process.
// The returned slice must align one status per context.
type BatchProcessor interface {
	ProcessBatch(ctxs []*ProcessingContext) []ProcessStatus
}

// processBatch invokes the module's batch hook when present and falls
// back to per-context Process.
func processBatch(m Module, ctxs []*ProcessingContext) []ProcessStatus {
	if bp, ok := m.(BatchProcessor); ok {
		return bp.ProcessBatch(ctxs)
	}
	statuses := make([]ProcessStatus, len(ctxs))
	for i, ctx := range ctxs {
		statuses[i] = m.Process(ctx)
	}
	return statuses
}
