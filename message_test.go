package nexusflow

import (
	"sync"
	"testing"

	"github.com/alecthomas/assert/v2"
)

type payload struct {
	Value int
	Label string
}

func TestMakeMessageMeta(t *testing.T) {
	m := MakeMessage(payload{Value: 1}, "src")
	meta := m.GetMeta()
	assert.Equal(t, "src", meta.SourceName)
	assert.NotEqual(t, uint64(0), meta.MessageID)
	assert.NotEqual(t, uint64(0), meta.Timestamp)
	assert.True(t, m.HasData())
}

func TestMessageIDsStrictlyIncreasing(t *testing.T) {
	prev := MakeMessage(1, "").GetMeta().MessageID
	for i := 0; i < 100; i++ {
		id := MakeMessage(i, "").GetMeta().MessageID
		assert.True(t, id > prev, "expected %d > %d", id, prev)
		prev = id
	}
}

func TestMessageIDsUniqueUnderConcurrency(t *testing.T) {
	const goroutines, perGoroutine = 8, 200
	ids := make(chan uint64, goroutines*perGoroutine)
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				ids <- MakeMessage(i, "").GetMeta().MessageID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[uint64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate message id %d", id)
		seen[id] = true
	}
}

func TestEmptyMessage(t *testing.T) {
	var m Message
	assert.False(t, m.HasData())
	assert.False(t, HasType[int](m))
	assert.Zero(t, BorrowPtr[int](m))

	_, err := Borrow[int](m)
	assert.IsError(t, err, ErrTypeMismatch)
	_, err = Mut[int](&m)
	assert.IsError(t, err, ErrTypeMismatch)
}

func TestHasTypeIsExact(t *testing.T) {
	m := MakeMessage(int32(7), "")
	assert.True(t, HasType[int32](m))
	assert.False(t, HasType[int](m), "no implicit numeric conversion")
	assert.False(t, HasType[int64](m))

	type alias = int32
	assert.True(t, HasType[alias](m), "type aliases are the same type")
}

func TestBorrowAndMut(t *testing.T) {
	m := MakeMessage(payload{Value: 10}, "")

	p, err := Borrow[payload](m)
	assert.NoError(t, err)
	assert.Equal(t, 10, p.Value)

	mp, err := Mut[payload](&m)
	assert.NoError(t, err)
	mp.Value = 20

	p2 := BorrowPtr[payload](m)
	assert.Equal(t, 20, p2.Value)
}

func TestCopyOnWriteIsolation(t *testing.T) {
	m1 := MakeMessage(payload{Value: 1, Label: "orig"}, "src")
	m2 := m1.Copy()
	assert.Equal(t, int64(2), m1.sharedCount())

	// Mutating m2 must not change what m1 observes.
	mp := MutPtr[payload](&m2)
	assert.NotZero(t, mp)
	mp.Value = 99
	mp.Label = "mutated"

	orig := BorrowPtr[payload](m1)
	assert.Equal(t, 1, orig.Value)
	assert.Equal(t, "orig", orig.Label)

	mut := BorrowPtr[payload](m2)
	assert.Equal(t, 99, mut.Value)

	// Both handles are uniquely held after the detach.
	assert.Equal(t, int64(1), m1.sharedCount())
	assert.Equal(t, int64(1), m2.sharedCount())
}

func TestUniqueMutationIsInPlace(t *testing.T) {
	m := MakeMessage(payload{Value: 1}, "")
	before := BorrowPtr[payload](m)
	mp := MutPtr[payload](&m)
	assert.True(t, before == mp, "sole holder must mutate in place without allocation")
}

func TestReaderHoldingBorrowSeesOriginal(t *testing.T) {
	m1 := MakeMessage(payload{Value: 5}, "")
	m2 := m1.Copy()

	reader := BorrowPtr[payload](m1)
	MutPtr[payload](&m2).Value = 50

	assert.Equal(t, 5, reader.Value, "borrow taken before another holder mutates sees the original")
}

func TestCloneIsDeep(t *testing.T) {
	m1 := MakeMessage(payload{Value: 1, Label: "a"}, "src")
	m2 := m1.Clone()

	assert.Equal(t, m1.GetMeta(), m2.GetMeta(), "clone copies metadata verbatim")
	assert.Equal(t, int64(1), m1.sharedCount())
	assert.Equal(t, int64(1), m2.sharedCount())

	MutPtr[payload](&m1).Value = 11
	MutPtr[payload](&m2).Value = 22
	assert.Equal(t, 11, BorrowPtr[payload](m1).Value)
	assert.Equal(t, 22, BorrowPtr[payload](m2).Value)
}

func TestCloneEmptyMessage(t *testing.T) {
	var m Message
	c := m.Clone()
	assert.False(t, c.HasData())
}

type clonedSlice struct {
	Items []int
}

func (c clonedSlice) CloneMessagePayload() any {
	cp := make([]int, len(c.Items))
	copy(cp, c.Items)
	return clonedSlice{Items: cp}
}

func TestClonerHookDeepCopiesReferences(t *testing.T) {
	m1 := MakeMessage(clonedSlice{Items: []int{1, 2, 3}}, "")
	m2 := m1.Copy()

	MutPtr[clonedSlice](&m2).Items[0] = 42

	assert.Equal(t, 1, BorrowPtr[clonedSlice](m1).Items[0],
		"Cloner payloads keep slice contents independent across COW")
}

func TestMetaIsPerHandle(t *testing.T) {
	m1 := MakeMessage(1, "a")
	m2 := m1.Copy()
	m2.Meta().SourceName = "b"

	assert.Equal(t, "a", m1.GetMeta().SourceName)
	assert.Equal(t, "b", m2.GetMeta().SourceName)
	assert.Equal(t, m1.GetMeta().MessageID, m2.GetMeta().MessageID)
}

func TestConcurrentReadersAndCopies(t *testing.T) {
	m := MakeMessage(payload{Value: 7}, "")
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := m.Copy()
			assert.Equal(t, 7, BorrowPtr[payload](local).Value)
			mp := MutPtr[payload](&local)
			mp.Value = 100
			assert.Equal(t, 100, BorrowPtr[payload](local).Value)
		}()
	}
	wg.Wait()
	assert.Equal(t, 7, BorrowPtr[payload](m).Value)
}

func TestMessageString(t *testing.T) {
	m := MakeMessage(1, "src")
	s := m.String()
	assert.Contains(t, s, "source=\"src\"")
	assert.Contains(t, s, "type=int")

	var empty Message
	assert.Contains(t, empty.String(), "[null]")
}
