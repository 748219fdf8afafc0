package engine

// bindSyscalls attaches every host handler this package implements to
// the registry, grouped by concern: prim graph, motion engines, graph
// buffers, save/load, dissolve, threading/control, and input.
func (e *Engine) bindSyscalls() {
	e.bindPrimSyscalls()
	e.bindMotionSyscalls()
	e.bindGraphSyscalls()
	e.bindSaveSyscalls()
	e.bindDissolveSyscalls()
	e.bindThreadSyscalls()
	e.bindInputSyscalls()
}
