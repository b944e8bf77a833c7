package queue_test

import (
	"testing"

	"github.com/randomizedcoder/rt-stepper/internal/queue"
)

// Sink variables to prevent compiler from eliminating benchmark loops
var sinkByte byte
var sinkBool bool
var sinkN int

func BenchmarkRingBuffer_PushPop(b *testing.B) {
	q := queue.NewRingBuffer[byte](64)
	b.ReportAllocs()
	b.ResetTimer()

	var val byte
	var ok bool
	for i := 0; i < b.N; i++ {
		q.Push(byte(i))
		val, ok = q.Pop()
	}
	sinkByte = val
	sinkBool = ok
}

func BenchmarkRingBuffer_PushPop_Interface(b *testing.B) {
	var q queue.Queue[byte] = queue.NewRingBuffer[byte](64)
	b.ReportAllocs()
	b.ResetTimer()

	var val byte
	var ok bool
	for i := 0; i < b.N; i++ {
		q.Push(byte(i))
		val, ok = q.Pop()
	}
	sinkByte = val
	sinkBool = ok
}

func BenchmarkRingBuffer_PopInto64(b *testing.B) {
	q := queue.NewRingBuffer[byte](64)
	dst := make([]byte, 64)
	b.ReportAllocs()
	b.ResetTimer()

	var n int
	for i := 0; i < b.N; i++ {
		for q.Push(byte(i)) {
		}
		n = q.PopInto(dst)
	}
	sinkN = n
}
