package utils

import (
	"runtime"
	"sync"
)

// PartitionMap holds contiguous [begin, end) buckets covering MaxIndex items.
// Bucket sizes differ by at most one, the larger buckets first.
type PartitionMap struct {
	MaxIndex       int
	ParallelDegree int
	Partitions     [][2]int
}

func NewPartitionMap(parallelDegree, maxIndex int) (pm *PartitionMap) {
	parallelDegree = min(parallelDegree, maxIndex)
	parallelDegree = max(parallelDegree, 1)
	var (
		size, extra = maxIndex / parallelDegree, maxIndex % parallelDegree
		begin       int
	)
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: parallelDegree,
		Partitions:     make([][2]int, parallelDegree),
	}
	for bn := range pm.Partitions {
		end := begin + size
		if bn < extra {
			end++
		}
		pm.Partitions[bn] = [2]int{begin, end}
		begin = end
	}
	return
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	return pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
}

// ParallelFor calls f for every index in [0, n) with one goroutine per bucket.
// np <= 0 uses GOMAXPROCS buckets.
func ParallelFor(np, n int, f func(i int)) {
	if n <= 0 {
		return
	}
	if np <= 0 {
		np = runtime.GOMAXPROCS(0)
	}
	var (
		pm = NewPartitionMap(np, n)
		wg sync.WaitGroup
	)
	for _, bucket := range pm.Partitions {
		wg.Add(1)
		go func(kMin, kMax int) {
			defer wg.Done()
			for k := kMin; k < kMax; k++ {
				f(k)
			}
		}(bucket[0], bucket[1])
	}
	wg.Wait()
}
