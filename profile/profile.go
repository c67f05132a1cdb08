package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`

// Profiler describes one profiling session.
type Profiler struct {
	// Mode is one of [Modes]. An empty Mode disables profiling.
	Mode string
	// Path is the directory profile files are written to.
	Path string
	// Quiet suppresses the profiler's own start and stop messages.
	Quiet bool
}

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Start begins profiling and returns the session's [Stopper].
//
// If the binary was built without the pprof tag, or Mode is empty or
// unknown, Start returns a no-op. Both Start and Stop are always safely
// callable.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}
