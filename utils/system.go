package utils

import (
	"runtime"
)

// MemUsage is a snapshot of the Go heap, sizes in MiB
type MemUsage struct {
	Alloc, TotalAlloc, Sys uint64
	NumGC                  uint32
}

func GetMemUsage() MemUsage {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemUsage{
		Alloc:      m.Alloc >> 20,
		TotalAlloc: m.TotalAlloc >> 20,
		Sys:        m.Sys >> 20,
		NumGC:      m.NumGC,
	}
}
