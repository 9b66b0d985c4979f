package modules

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/youngzilla0/nexusflow"
)

func TestGeneratorProducesBoundedSequence(t *testing.T) {
	gen := NewGenerator("gen")
	cfg := nexusflow.NewConfig()
	cfg.Add("count", int64(3))
	cfg.Add("intervalMs", int64(0))
	assert.NoError(t, gen.Configure(cfg))
	assert.NoError(t, gen.Init())

	var outputs []nexusflow.Message
	for i := 0; i < 5; i++ {
		ctx := nexusflow.NewSingleContext(nexusflow.Message{})
		assert.Equal(t, nexusflow.ProcessOK, gen.Process(ctx))
		outputs = append(outputs, ctx.CollectOutputs()...)
	}

	assert.Equal(t, 3, len(outputs), "generator stops at its configured count")
	for i, msg := range outputs {
		v, err := nexusflow.Borrow[int64](msg)
		assert.NoError(t, err)
		assert.Equal(t, int64(i), *v)
		assert.Equal(t, "gen", msg.GetMeta().SourceName)
	}
	assert.Equal(t, int64(3), gen.Produced())
}

func TestPassThroughForwardsAndRetags(t *testing.T) {
	pt := NewPassThrough("mid")
	assert.NoError(t, pt.Configure(nexusflow.NewConfig()))

	in := nexusflow.MakeMessage("hello", "origin")
	inID := in.GetMeta().MessageID
	ctx := nexusflow.NewSingleContext(in)

	assert.Equal(t, nexusflow.ProcessOK, pt.Process(ctx))

	outs := ctx.CollectOutputs()
	assert.Equal(t, 1, len(outs))
	assert.Equal(t, inID, outs[0].GetMeta().MessageID, "the id must survive the hop")
	assert.Equal(t, "mid", outs[0].GetMeta().SourceName)
}

func TestPassThroughRejectsEmptyInput(t *testing.T) {
	pt := NewPassThrough("mid")
	ctx := nexusflow.NewSingleContext(nexusflow.Message{})
	assert.Equal(t, nexusflow.ProcessFailedGetInput, pt.Process(ctx))
}

func TestCollectorGathers(t *testing.T) {
	c := NewCollector("sink")
	assert.NoError(t, c.Init())

	for i := 0; i < 4; i++ {
		ctx := nexusflow.NewSingleContext(nexusflow.MakeMessage(i, "src"))
		assert.Equal(t, nexusflow.ProcessOK, c.Process(ctx))
	}

	assert.Equal(t, 4, c.Count())
	assert.True(t, c.WaitFor(4, time.Millisecond))
	assert.False(t, c.WaitFor(5, 10*time.Millisecond))
}
