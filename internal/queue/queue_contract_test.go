package queue_test

import (
	"sync"
	"testing"

	"github.com/randomizedcoder/rt-stepper/internal/queue"
)

// hammer runs n goroutines calling op and reports whether any of them hit
// the SPSC guard. Overlap is not guaranteed, so a miss is only logged.
func hammer(t *testing.T, n int, op func(id int)) {
	t.Helper()
	panicked := make(chan struct{}, 1)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					select {
					case panicked <- struct{}{}:
					default:
					}
				}
			}()
			op(id)
		}(i)
	}
	wg.Wait()

	select {
	case <-panicked:
		t.Log("SPSC guard detected concurrent access")
	default:
		t.Log("no overlap observed")
	}
}

// Two unsynchronized producers, as an echo path racing the sender would be.
func TestRingBuffer_SPSC_ConcurrentPush(t *testing.T) {
	q := queue.NewRingBuffer[byte](1024)
	hammer(t, 8, func(id int) {
		for j := 0; j < 1000; j++ {
			q.Push(byte(id))
			if q.Len() == q.Cap() {
				return
			}
		}
	})
}

func TestRingBuffer_SPSC_ConcurrentPop(t *testing.T) {
	q := queue.NewRingBuffer[byte](1024)
	for q.Push('x') {
	}
	dst := make([]byte, 4)
	hammer(t, 8, func(int) {
		for j := 0; j < 200; j++ {
			q.PopInto(dst[:0])
			q.Pop()
		}
	})
}

// TestRingBuffer_SPSC_Bytes runs one producer and one consumer that
// drains in batches, the way the console writer does.
func TestRingBuffer_SPSC_Bytes(t *testing.T) {
	q := queue.NewRingBuffer[byte](64)
	const count = 100000
	done := make(chan struct{})

	go func() {
		for i := 0; i < count; i++ {
			for !q.Push(byte(i)) {
			}
		}
		close(done)
	}()

	batch := make([]byte, 16)
	received := 0
	for received < count {
		n := q.PopInto(batch)
		for _, b := range batch[:n] {
			if b != byte(received) {
				t.Fatalf("FIFO violation at %d: expected %d, got %d", received, byte(received), b)
			}
			received++
		}
	}

	<-done

	if q.Len() != 0 {
		t.Errorf("expected empty buffer, Len() = %d", q.Len())
	}
}
