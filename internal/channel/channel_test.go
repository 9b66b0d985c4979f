package channel

import (
	"sync"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestFIFOOrder(t *testing.T) {
	ch := New[int](10)
	for i := 0; i < 5; i++ {
		assert.True(t, ch.Push(i))
	}
	for i := 0; i < 5; i++ {
		item, ok := ch.TryPop()
		assert.True(t, ok)
		assert.Equal(t, i, item)
	}
	_, ok := ch.TryPop()
	assert.False(t, ok)
}

func TestCapacityBounds(t *testing.T) {
	ch := New[string](2)
	assert.True(t, ch.TryPush("a"))
	assert.True(t, ch.TryPush("b"))
	assert.False(t, ch.TryPush("c"), "push beyond capacity must fail")
	assert.Equal(t, 2, ch.Size())

	item, ok := ch.TryPop()
	assert.True(t, ok)
	assert.Equal(t, "a", item)
	assert.True(t, ch.TryPush("c"))
}

func TestCapacityOneAlternating(t *testing.T) {
	ch := New[int](1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			assert.True(t, ch.Push(i))
		}
	}()
	for i := 0; i < 100; i++ {
		item, ok := ch.Pop()
		assert.True(t, ok)
		assert.Equal(t, i, item)
	}
	<-done
}

func TestSecondPushBlocksAtCapacityOne(t *testing.T) {
	ch := New[int](1)
	assert.True(t, ch.Push(1))

	blocked := make(chan bool, 1)
	go func() {
		blocked <- ch.Push(2)
	}()

	select {
	case <-blocked:
		t.Fatal("second push should block until a pop makes room")
	case <-time.After(50 * time.Millisecond):
	}

	item, ok := ch.Pop()
	assert.True(t, ok)
	assert.Equal(t, 1, item)
	assert.True(t, <-blocked)
}

func TestPushForTimesOut(t *testing.T) {
	ch := New[int](1)
	assert.True(t, ch.Push(1))

	start := time.Now()
	assert.False(t, ch.PushFor(2, 20*time.Millisecond))
	assert.True(t, time.Since(start) >= 20*time.Millisecond)
}

func TestPopForTimesOut(t *testing.T) {
	ch := New[int](1)
	_, ok := ch.PopFor(20 * time.Millisecond)
	assert.False(t, ok)
}

func TestPopForReceivesLatePush(t *testing.T) {
	ch := New[int](1)
	go func() {
		time.Sleep(10 * time.Millisecond)
		ch.Push(42)
	}()
	item, ok := ch.PopFor(500 * time.Millisecond)
	assert.True(t, ok)
	assert.Equal(t, 42, item)
}

func TestShutdownDrainsThenFails(t *testing.T) {
	ch := New[int](5)
	assert.True(t, ch.Push(1))
	assert.True(t, ch.Push(2))

	ch.Shutdown()

	assert.False(t, ch.Push(3), "push after shutdown must fail")
	assert.False(t, ch.TryPush(3))
	assert.False(t, ch.PushFor(3, time.Millisecond))

	item, ok := ch.Pop()
	assert.True(t, ok)
	assert.Equal(t, 1, item)
	item, ok = ch.Pop()
	assert.True(t, ok)
	assert.Equal(t, 2, item)

	_, ok = ch.Pop()
	assert.False(t, ok, "pop on drained shutdown channel must fail")
}

func TestShutdownWakesBlockedWaiters(t *testing.T) {
	ch := New[int](1)
	assert.True(t, ch.Push(1))
	empty := New[int](1)

	var wg sync.WaitGroup
	results := make(chan bool, 4)

	// Two producers blocked on the full channel.
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- ch.Push(99)
		}()
	}
	// One consumer blocked on the empty channel.
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, ok := empty.Pop()
		results <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	ch.Shutdown()
	empty.Shutdown()

	doneCh := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneCh)
	}()
	select {
	case <-doneCh:
	case <-time.After(time.Second):
		t.Fatal("waiters still parked after shutdown")
	}
}

func TestUnboundedChannel(t *testing.T) {
	ch := New[int](-1)
	for i := 0; i < 1000; i++ {
		assert.True(t, ch.TryPush(i))
	}
	assert.Equal(t, 1000, ch.Size())
}

func TestZeroCapacity(t *testing.T) {
	ch := New[int](0)
	assert.False(t, ch.TryPush(1))
	assert.True(t, ch.IsEmpty())
}

func TestConcurrentProducersConsumers(t *testing.T) {
	const producers, perProducer = 4, 250
	ch := New[int](8)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				assert.True(t, ch.Push(i))
			}
		}()
	}

	var mu sync.Mutex
	received := 0
	var cwg sync.WaitGroup
	for c := 0; c < 2; c++ {
		cwg.Add(1)
		go func() {
			defer cwg.Done()
			for {
				if _, ok := ch.Pop(); !ok {
					return
				}
				mu.Lock()
				received++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	for !ch.IsEmpty() {
		time.Sleep(time.Millisecond)
	}
	ch.Shutdown()
	cwg.Wait()
	assert.Equal(t, producers*perProducer, received)
}
