// Package profile provides optional runtime profiling for chalk.
//
// Profiling is built on [github.com/pkg/profile] and compiled in only with
// the "pprof" build tag:
//
//	go build -tags pprof .
//
// Without the tag, [Modes] is empty and [Profiler.Start] is a no-op.
//
// # Modes
//
//   - allocs:    memory allocation profiling (all allocations)
//   - block:     blocking (synchronization) profiling
//   - clock:     wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: goroutine profiling
//   - heap:      heap profiling (live allocations)
//   - mem:       general memory profiling
//   - mutex:     mutex contention profiling
//   - thread:    thread creation profiling
//   - trace:     execution tracing
//
// # Usage
//
//	p := profile.Profiler{Mode: "cpu", Path: "/tmp/profiles"}
//	defer p.Start().Stop()
//
// Files are named after the mode (cpu.pprof, mem.pprof, trace.out) and can
// be inspected with go tool pprof:
//
//	go tool pprof -http=: ./chalk /tmp/profiles/cpu.pprof
//
// The pprof tag also imports [net/http/pprof], which registers its handlers
// on [net/http.DefaultServeMux].
package profile
