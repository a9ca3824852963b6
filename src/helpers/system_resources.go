package helpers

import "runtime"

// -----------------------------------------------------------------------------
// Host memory probing for the health endpoint. A twenty-year daily table
// across the full registry is small, but operators still want the headroom
// figure next to the row count when sizing containers.
// -----------------------------------------------------------------------------

// MemoryReport is the memory block of the health payload.
type MemoryReport struct {
	TotalSystemMB int `json:"total_system_mb"`
	HeapAllocMB   int `json:"heap_alloc_mb"`
	NumGoroutines int `json:"num_goroutines"`
}

// -----------------------------------------------------------------------------

// ProbeMemory snapshots process and host memory. TotalSystemMB is 0 when the
// platform probe fails; consumers treat that as unknown, not empty.
func ProbeMemory() MemoryReport {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	return MemoryReport{
		TotalSystemMB: totalSystemMemoryMB(),
		HeapAllocMB:   int(stats.HeapAlloc / 1024 / 1024),
		NumGoroutines: runtime.NumGoroutine(),
	}
}
