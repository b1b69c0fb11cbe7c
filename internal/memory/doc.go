// Package memory configures Go's soft memory limit for containerized runs.
//
// GOMAXPROCS follows cgroup CPU limits automatically but GOMEMLIMIT does not.
// Call [ConfigureFromEnv] once at startup:
//
//   - GOMEMLIMIT set: left as is.
//   - MEMORY_LIMIT set (bytes, e.g. from the Kubernetes Downward API): the
//     limit becomes MEMORY_LIMIT * MEMORY_RATIO.
//   - Otherwise the cgroup v2 memory.max file is used the same way.
//
// MEMORY_RATIO defaults to 0.85, leaving room for ffmpeg and libvips, which
// allocate outside the Go heap.
//
// Kubernetes example:
//
//	env:
//	  - name: MEMORY_LIMIT
//	    valueFrom:
//	      resourceFieldRef:
//	        resource: limits.memory
package memory
