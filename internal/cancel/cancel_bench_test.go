package cancel_test

import (
	"testing"

	"github.com/randomizedcoder/rt-stepper/internal/cancel"
)

// Sink variables to prevent compiler from eliminating benchmark loops
var sinkBool bool

// Direct type benchmarks (true performance floor)

func BenchmarkCancel_Atomic_Done_Direct(b *testing.B) {
	c := cancel.NewAtomic()
	b.ReportAllocs()
	b.ResetTimer()

	var result bool
	for i := 0; i < b.N; i++ {
		result = c.Done()
	}
	sinkBool = result
}

func BenchmarkCancel_Flags_Running_Direct(b *testing.B) {
	f := cancel.NewFlags()
	b.ReportAllocs()
	b.ResetTimer()

	var result bool
	for i := 0; i < b.N; i++ {
		result = f.Running()
	}
	sinkBool = result
}

// Interface benchmarks (realistic usage with dynamic dispatch)

func BenchmarkCancel_Flags_Done_Interface(b *testing.B) {
	var c cancel.Canceler = cancel.NewFlags()
	b.ReportAllocs()
	b.ResetTimer()

	var result bool
	for i := 0; i < b.N; i++ {
		result = c.Done()
	}
	sinkBool = result
}

// Parallel benchmarks (multiple goroutines checking)

func BenchmarkCancel_Atomic_Done_Parallel(b *testing.B) {
	c := cancel.NewAtomic()
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		var result bool
		for pb.Next() {
			result = c.Done()
		}
		sinkBool = result
	})
}

func BenchmarkLatch_IsOpen(b *testing.B) {
	l := cancel.NewLatch()
	b.ReportAllocs()
	b.ResetTimer()

	var result bool
	for i := 0; i < b.N; i++ {
		result = l.IsOpen()
	}
	sinkBool = result
}
