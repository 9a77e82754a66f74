package kafka

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AlertSlope/pkg/logger"
)

type recordingHook struct {
	name  string
	calls *[]string
}

func (h recordingHook) BeforeHandle(ctx context.Context, topic string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
	*h.calls = append(*h.calls, "before:"+h.name)
	return ctx, km, append(data, h.name...), nil
}

func (h recordingHook) AfterHandle(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {
	*h.calls = append(*h.calls, "after:"+h.name)
}

func (h recordingHook) OnError(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {
	*h.calls = append(*h.calls, "error:"+h.name)
}

func TestHookChain_Order(t *testing.T) {
	var calls []string
	chain := NewHookChain(recordingHook{"a", &calls}, nil, recordingHook{"b", &calls})

	_, _, data, err := chain.BeforeHandle(context.Background(), "alerts", kafka.Message{}, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "xab", string(data))

	chain.AfterHandle(context.Background(), "alerts", kafka.Message{}, data, nil)
	assert.Equal(t, []string{"before:a", "before:b", "after:b", "after:a"}, calls)
}

func TestHookChain_PanicBecomesHookError(t *testing.T) {
	var calls []string
	panicky := HookFuncs{Before: func(context.Context, string, kafka.Message, []byte) (context.Context, kafka.Message, []byte, error) {
		panic("boom")
	}}
	chain := NewHookChain(panicky, recordingHook{"a", &calls})

	_, _, _, err := chain.BeforeHandle(context.Background(), "alerts", kafka.Message{}, nil)
	var herr *HookError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, "ERR_PANIC", herr.Code)
	assert.Equal(t, []string{"error:a"}, calls)

	assert.NotPanics(t, func() {
		NewHookChain(HookFuncs{After: func(context.Context, string, kafka.Message, []byte, error) { panic("x") }}).
			AfterHandle(context.Background(), "alerts", kafka.Message{}, nil, nil)
	})
}

func TestTraceID(t *testing.T) {
	msg := kafka.Message{Headers: []kafka.Header{{Key: "trace_id", Value: []byte("abc")}}}
	assert.Equal(t, "abc", ExtractTraceID(msg))
	assert.Empty(t, ExtractTraceID(kafka.Message{}))

	ctx := WithTraceID(context.Background(), "abc")
	assert.Equal(t, "abc", TraceIDFrom(ctx))
	assert.Empty(t, TraceIDFrom(WithTraceID(context.Background(), "")))
}

func TestLoggingHook(t *testing.T) {
	var buf bytes.Buffer
	hook := NewLoggingHook(logger.NewWriter(&buf, zerolog.DebugLevel))
	msg := kafka.Message{Partition: 2, Offset: 41, Headers: []kafka.Header{{Key: "trace_id", Value: []byte("t-1")}}}

	ctx, _, _, err := hook.BeforeHandle(context.Background(), "alerts", msg, nil)
	require.NoError(t, err)
	assert.Equal(t, "t-1", TraceIDFrom(ctx))

	hook.AfterHandle(ctx, "alerts", msg, nil, nil)
	assert.Contains(t, buf.String(), `"message":"message handled"`)
	assert.Contains(t, buf.String(), `"offset":41`)

	buf.Reset()
	hook.OnError(ctx, "alerts", msg, nil, errors.New("bad alert"))
	assert.Contains(t, buf.String(), `"trace_id":"t-1"`)
	assert.Contains(t, buf.String(), "bad alert")
}
