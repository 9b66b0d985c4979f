package nexusflow

import (
	"fmt"
	"reflect"
	"sync/atomic"
	"time"
)

// messageIDCounter issues process-wide unique, strictly increasing
// message ids.
var messageIDCounter atomic.Uint64

func nextMessageID() uint64 {
	return messageIDCounter.Add(1)
}

// MessageMeta carries the identity of a message: a process-wide unique
// id, the wall-clock creation time in milliseconds, and the name of the
// module that produced it (empty if produced outside a module).
type MessageMeta struct {
	MessageID  uint64
	Timestamp  uint64
	SourceName string
}

// Cloner lets a payload type provide its own deep-copy for COW and
// Clone. Payloads that do not implement it are copied by value, so
// types holding slices, maps or pointers should implement Cloner if
// independent copies matter to them.
type Cloner interface {
	CloneMessagePayload() any
}

// cell is the shared, reference-counted holder of a type-erased
// payload. data is a *T and is immutable once the cell is shared;
// mutation goes through detach (COW) on the owning Message.
type cell struct {
	refs      atomic.Int64
	typ       reflect.Type
	data      any
	cloneData func(src any) any
}

func (c *cell) detachClone() *cell {
	nc := &cell{
		typ:       c.typ,
		data:      c.cloneData(c.data),
		cloneData: c.cloneData,
	}
	nc.refs.Store(1)
	return nc
}

// Message is a type-erased payload container with copy-on-write
// sharing. The zero value is an empty message with no payload.
//
// Sharing is explicit: Copy returns a cheap second handle onto the same
// payload cell, and the dispatcher fans out with one handle per
// subscriber. Plain struct assignment transfers the handle and must be
// treated as a move, not a copy, because it does not touch the
// reference count. Mutable access (Mut, MutPtr) detaches a private deep
// copy when the cell is shared, so no holder ever observes another
// holder's writes.
//
// Copy, Clone and the read accessors are safe under concurrency.
// Mutating the same Message value from two goroutines is not.
type Message struct {
	cell *cell
	meta MessageMeta
}

// MakeMessage creates a message holding payload, stamped with a fresh
// id and the current wall-clock time. sourceName tags the producing
// module and may be empty.
func MakeMessage[T any](payload T, sourceName string) Message {
	p := new(T)
	*p = payload
	c := &cell{
		typ:  reflect.TypeFor[T](),
		data: p,
	}
	c.cloneData = func(src any) any {
		orig := *src.(*T)
		if cl, ok := any(orig).(Cloner); ok {
			if cp, ok := cl.CloneMessagePayload().(T); ok {
				return &cp
			}
		}
		cp := orig
		return &cp
	}
	c.refs.Store(1)

	return Message{
		cell: c,
		meta: MessageMeta{
			MessageID:  nextMessageID(),
			Timestamp:  uint64(time.Now().UnixMilli()),
			SourceName: sourceName,
		},
	}
}

// HasData reports whether the message holds a payload.
func (m Message) HasData() bool { return m.cell != nil }

// HasType reports whether the message holds a payload of exactly type
// T. There is no implicit conversion or interface widening.
func HasType[T any](m Message) bool {
	return m.cell != nil && m.cell.typ == reflect.TypeFor[T]()
}

// BorrowPtr returns a read-only pointer to the payload, or nil if the
// message is empty or the type does not match. The pointee must not be
// written through; use MutPtr for mutation.
func BorrowPtr[T any](m Message) *T {
	if !HasType[T](m) {
		return nil
	}
	return m.cell.data.(*T)
}

// Borrow is the error-reporting variant of BorrowPtr.
func Borrow[T any](m Message) (*T, error) {
	p := BorrowPtr[T](m)
	if p == nil {
		return nil, typeMismatch[T](m)
	}
	return p, nil
}

// MutPtr returns a mutable pointer to the payload, or nil if the
// message is empty or the type does not match. If the payload cell is
// shared, a private deep copy is installed first, so other holders keep
// observing the original payload. A uniquely held payload is mutated in
// place with no allocation.
func MutPtr[T any](m *Message) *T {
	if !HasType[T](*m) {
		return nil
	}
	m.detachIfShared()
	return m.cell.data.(*T)
}

// Mut is the error-reporting variant of MutPtr.
func Mut[T any](m *Message) (*T, error) {
	p := MutPtr[T](m)
	if p == nil {
		return nil, typeMismatch[T](*m)
	}
	return p, nil
}

func typeMismatch[T any](m Message) error {
	actual := "[null]"
	if m.cell != nil {
		actual = m.cell.typ.String()
	}
	return fmt.Errorf("%w: requested %s, actual %s",
		ErrTypeMismatch, reflect.TypeFor[T]().String(), actual)
}

func (m *Message) detachIfShared() {
	if m.cell != nil && m.cell.refs.Load() > 1 {
		detached := m.cell.detachClone()
		m.cell.refs.Add(-1)
		m.cell = detached
	}
}

// Copy returns a cheap second handle sharing the payload cell. The
// metadata is copied by value.
func (m Message) Copy() Message {
	if m.cell != nil {
		m.cell.refs.Add(1)
	}
	return m
}

// Clone returns a message with an independent deep copy of the payload
// and the metadata copied verbatim.
func (m Message) Clone() Message {
	if m.cell == nil {
		return Message{meta: m.meta}
	}
	return Message{cell: m.cell.detachClone(), meta: m.meta}
}

// release drops this handle's reference. Only the runtime calls it, on
// paths where a handle is discarded without being forwarded; user code
// relies on the garbage collector instead.
func (m *Message) release() {
	if m.cell != nil {
		m.cell.refs.Add(-1)
		m.cell = nil
	}
}

// GetMeta returns a snapshot of the message metadata.
func (m Message) GetMeta() MessageMeta { return m.meta }

// Meta returns a mutable handle into this message's own metadata. The
// metadata is per-handle, not shared through the payload cell.
func (m *Message) Meta() *MessageMeta { return &m.meta }

// sharedCount reports the number of live handles on the payload cell.
func (m Message) sharedCount() int64 {
	if m.cell == nil {
		return 0
	}
	return m.cell.refs.Load()
}

// String renders the message identity for logs.
func (m Message) String() string {
	typ := "[null]"
	if m.cell != nil {
		typ = m.cell.typ.String()
	}
	return fmt.Sprintf("Message{id=%d, ts=%d, source=%q, type=%s}",
		m.meta.MessageID, m.meta.Timestamp, m.meta.SourceName, typ)
}
