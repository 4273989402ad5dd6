package kafkax

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errDrained = errors.New("drained")

type fakeReader struct {
	mu        sync.Mutex
	pending   []kafka.Message
	committed []int64
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) == 0 {
		return kafka.Message{}, errDrained
	}
	m := f.pending[0]
	f.pending = f.pending[1:]
	return m, nil
}

func (f *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	return nil
}

func (f *fakeReader) Close() error { return nil }

func (f *fakeReader) committedOffsets() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.committed...)
}

func TestConsumerCommitsOnlyHandledMessages(t *testing.T) {
	r := &fakeReader{pending: []kafka.Message{
		{Offset: 1, Value: []byte("ok")},
		{Offset: 2, Value: []byte("bad")},
		{Offset: 3, Value: []byte("ok")},
	}}
	c := &Consumer{r: r, log: zap.NewNop(), workers: 1}

	err := c.Start(context.Background(), func(ctx context.Context, m kafka.Message) error {
		if string(m.Value) == "bad" {
			return errors.New("handler failed")
		}
		return nil
	})
	require.ErrorIs(t, err, errDrained)

	// a failed message must never have its offset committed
	assert.Eventually(t, func() bool {
		got := r.committedOffsets()
		return len(got) == 2 && got[0] == 1 && got[1] == 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestConsumerCommitsNothingWhenAllFail(t *testing.T) {
	r := &fakeReader{pending: []kafka.Message{{Offset: 1}, {Offset: 2}}}
	c := &Consumer{r: r, log: zap.NewNop(), workers: 2}

	err := c.Start(context.Background(), func(ctx context.Context, m kafka.Message) error {
		return errors.New("handler failed")
	})
	require.ErrorIs(t, err, errDrained)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, r.committedOffsets())
}
