package nexusflow

import "fmt"

// inputShape distinguishes the two input layouts a context can carry.
type inputShape int

const (
	inputSingle inputShape = iota // one message, possibly empty
	inputMulti                    // tag -> message, from the fusion loop
)

// contextMode records how the module interacted with its inputs. It
// decides what CollectOutputs yields.
type contextMode int

const (
	modeUnspecified contextMode = iota
	modeBorrowOnly
	modeTakeAndOutput
	modeModifyInPlace
)

// ProcessingContext manages the I/O of a single Process invocation. The
// worker creates one per invocation and destroys it right after; it
// must not be retained or shared across goroutines.
//
// The module either reads its input (GetInput, BorrowPayload), takes
// ownership of it (TakeInput), or mutates it in place (MutPayload). In
// the in-place case the input itself becomes the single output and any
// AddOutput calls are ignored; in every other case the outputs are
// exactly the AddOutput arguments.
type ProcessingContext struct {
	shape  inputShape
	single Message
	multi  map[string]Message

	mode    contextMode
	outputs []Message
}

// NewSingleContext creates a context around one input message. The
// worker uses it for the non-fusion paths; pass an empty Message for a
// source invocation.
func NewSingleContext(input Message) *ProcessingContext {
	return &ProcessingContext{shape: inputSingle, single: input}
}

// NewMultiContext creates a context over a tag-to-message map, the
// shape the fusion loop delivers.
func NewMultiContext(inputs map[string]Message) *ProcessingContext {
	return &ProcessingContext{shape: inputMulti, multi: inputs}
}

// GetInput returns a read-only view of the single input message, or nil
// when the context carries tagged inputs.
func (c *ProcessingContext) GetInput() *Message {
	if c.shape != inputSingle {
		return nil
	}
	c.touch(modeBorrowOnly)
	return &c.single
}

// GetTaggedInput returns a read-only view of the input delivered by the
// named upstream, or nil when absent.
func (c *ProcessingContext) GetTaggedInput(tag string) *Message {
	if c.shape != inputMulti {
		return nil
	}
	msg, ok := c.multi[tag]
	if !ok {
		return nil
	}
	c.touch(modeBorrowOnly)
	view := msg
	return &view
}

// TakeInput moves the single input message out of the context. It fails
// when the context carries tagged inputs.
func (c *ProcessingContext) TakeInput() (Message, error) {
	if c.shape != inputSingle {
		return Message{}, fmt.Errorf("TakeInput: input payload is not a single message")
	}
	c.touch(modeTakeAndOutput)
	msg := c.single
	c.single = Message{}
	return msg, nil
}

// TakeTaggedInput moves the named input message out of the context.
func (c *ProcessingContext) TakeTaggedInput(tag string) (Message, error) {
	if c.shape != inputMulti {
		return Message{}, fmt.Errorf("TakeTaggedInput: input payload is not a tagged map")
	}
	msg, ok := c.multi[tag]
	if !ok {
		return Message{}, fmt.Errorf("TakeTaggedInput: no input for tag %q", tag)
	}
	c.touch(modeTakeAndOutput)
	delete(c.multi, tag)
	return msg, nil
}

// AddOutput appends a message to the output buffer. Ignored by
// CollectOutputs when the module mutated its input in place.
func (c *ProcessingContext) AddOutput(msg Message) {
	c.outputs = append(c.outputs, msg)
}

// BorrowPayload returns a read-only pointer to the payload of the
// single input, or nil on shape or type mismatch.
func BorrowPayload[T any](c *ProcessingContext) *T {
	if c.shape != inputSingle {
		return nil
	}
	p := BorrowPtr[T](c.single)
	if p != nil {
		c.touch(modeBorrowOnly)
	}
	return p
}

// BorrowTaggedPayload returns a read-only pointer to the payload of the
// named input, or nil when the tag is absent or the type mismatches.
func BorrowTaggedPayload[T any](c *ProcessingContext, tag string) *T {
	if c.shape != inputMulti {
		return nil
	}
	msg, ok := c.multi[tag]
	if !ok {
		return nil
	}
	p := BorrowPtr[T](msg)
	if p != nil {
		c.touch(modeBorrowOnly)
	}
	return p
}

// MutPayload returns a mutable pointer to the payload of the single
// input, detaching a private copy when the payload cell is shared. A
// non-nil return switches the context into in-place mode: the input
// becomes the output.
func MutPayload[T any](c *ProcessingContext) *T {
	if c.shape != inputSingle {
		return nil
	}
	p := MutPtr[T](&c.single)
	if p != nil {
		c.mode = modeModifyInPlace
	}
	return p
}

// MutTaggedPayload is the tagged variant of MutPayload.
func MutTaggedPayload[T any](c *ProcessingContext, tag string) *T {
	if c.shape != inputMulti {
		return nil
	}
	msg, ok := c.multi[tag]
	if !ok {
		return nil
	}
	p := MutPtr[T](&msg)
	if p != nil {
		c.mode = modeModifyInPlace
		c.multi[tag] = msg
	}
	return p
}

// touch records an input interaction without overriding a stronger
// mode already in effect.
func (c *ProcessingContext) touch(m contextMode) {
	if c.mode == modeModifyInPlace {
		return
	}
	c.mode = m
}

// CollectOutputs yields the messages to dispatch for this invocation.
// The worker calls it once after the module returns; tests driving a
// module by hand may call it the same way.
func (c *ProcessingContext) CollectOutputs() []Message {
	if c.mode != modeModifyInPlace {
		out := c.outputs
		c.outputs = nil
		return out
	}

	// In-place mode: the (now private) input is the single output.
	if c.shape == inputSingle {
		msg := c.single
		c.single = Message{}
		if !msg.HasData() {
			return nil
		}
		return []Message{msg}
	}
	out := make([]Message, 0, len(c.multi))
	for tag, msg := range c.multi {
		out = append(out, msg)
		delete(c.multi, tag)
	}
	return out
}

// discardInputs releases input handles that were neither taken nor
// collected, so uniquely held payloads become mutable in place again
// downstream.
func (c *ProcessingContext) discardInputs() {
	if c.shape == inputSingle {
		c.single.release()
		return
	}
	for tag, msg := range c.multi {
		msg.release()
		delete(c.multi, tag)
	}
}
