// tests/benchmark_test.go
//
// Comparative benchmarks of the non-blocking set against the two
// stock ways of building a concurrent int64 set in Go: sync.Map and a
// mutex-guarded map.
package tests

import (
	"math/rand"
	"sync"
	"testing"

	"nbset/pkg/nbset"
)

const benchKeyRange = 1 << 14

// mutexSet is the baseline everybody writes first.
type mutexSet struct {
	mu sync.Mutex
	m  map[int64]struct{}
}

func newMutexSet() *mutexSet {
	return &mutexSet{m: make(map[int64]struct{})}
}

func (s *mutexSet) Add(k int64) {
	s.mu.Lock()
	s.m[k] = struct{}{}
	s.mu.Unlock()
}

func (s *mutexSet) Remove(k int64) {
	s.mu.Lock()
	delete(s.m, k)
	s.mu.Unlock()
}

func (s *mutexSet) Contains(k int64) bool {
	s.mu.Lock()
	_, ok := s.m[k]
	s.mu.Unlock()
	return ok
}

func BenchmarkParallelMixed_NBSet(b *testing.B) {
	tree := nbset.New()
	for i := int64(0); i < benchKeyRange/2; i++ {
		tree.Add(i)
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		rng := rand.New(rand.NewSource(rand.Int63()))
		for pb.Next() {
			k := rng.Int63n(benchKeyRange)
			switch rng.Intn(10) {
			case 0:
				tree.Add(k)
			case 1:
				tree.Remove(k)
			default:
				tree.Contains(k)
			}
		}
	})
}

func BenchmarkParallelMixed_SyncMap(b *testing.B) {
	var m sync.Map
	for i := int64(0); i < benchKeyRange/2; i++ {
		m.Store(i, struct{}{})
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		rng := rand.New(rand.NewSource(rand.Int63()))
		for pb.Next() {
			k := rng.Int63n(benchKeyRange)
			switch rng.Intn(10) {
			case 0:
				m.Store(k, struct{}{})
			case 1:
				m.Delete(k)
			default:
				m.Load(k)
			}
		}
	})
}

func BenchmarkParallelMixed_MutexMap(b *testing.B) {
	s := newMutexSet()
	for i := int64(0); i < benchKeyRange/2; i++ {
		s.Add(i)
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		rng := rand.New(rand.NewSource(rand.Int63()))
		for pb.Next() {
			k := rng.Int63n(benchKeyRange)
			switch rng.Intn(10) {
			case 0:
				s.Add(k)
			case 1:
				s.Remove(k)
			default:
				s.Contains(k)
			}
		}
	})
}

func BenchmarkSequentialAdd_NBSet(b *testing.B) {
	tree := nbset.New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree.Add(int64(i))
	}
}

func BenchmarkSequentialAdd_MutexMap(b *testing.B) {
	s := newMutexSet()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Add(int64(i))
	}
}
