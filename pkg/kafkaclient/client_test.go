package kafkaclient

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockReader simulates the kafka-go Reader for unit testing.
type mockReader struct {
	messages   chan kafka.Message
	commitChan chan kafka.Message
	closed     atomic.Bool
}

func newMockReader(capacity int) *mockReader {
	return &mockReader{
		messages:   make(chan kafka.Message, capacity),
		commitChan: make(chan kafka.Message, capacity),
	}
}

// produce feeds count messages into the reader and closes it for reading.
func (mr *mockReader) produce(count int) {
	go func() {
		defer close(mr.messages)
		for i := 0; i < count; i++ {
			mr.messages <- kafka.Message{
				Topic:     "test-topic",
				Partition: 0,
				Offset:    int64(i),
				Value:     []byte(fmt.Sprintf("mock-message-%d", i)),
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()
}

func (mr *mockReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if mr.closed.Load() {
		return kafka.Message{}, io.EOF
	}
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case msg, ok := <-mr.messages:
		if !ok {
			return kafka.Message{}, io.EOF
		}
		return msg, nil
	}
}

func (mr *mockReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	if mr.closed.Load() {
		return io.EOF
	}
	for _, msg := range msgs {
		mr.commitChan <- msg
	}
	return nil
}

func (mr *mockReader) Close() error {
	if mr.closed.CompareAndSwap(false, true) {
		close(mr.commitChan)
	}
	return nil
}

func newTestConsumer(reader Reader) *Consumer {
	return &Consumer{
		log:         zerolog.Nop(),
		reader:      reader,
		doneChan:    make(chan struct{}),
		messageChan: make(chan kafka.Message),
	}
}

func TestConsumerDeliversAndCommits(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	const expected = 3
	reader := newMockReader(expected)
	reader.produce(expected)

	consumer := newTestConsumer(reader)
	consumer.StartConsuming(ctx)

	received := 0
	for msg := range consumer.Messages() {
		assert.Equal(t, fmt.Sprintf("mock-message-%d", received), string(msg.Value))
		require.NoError(t, consumer.CommitOffset(ctx, msg))
		received++
	}
	assert.Equal(t, expected, received)

	consumer.Stop()

	committed := 0
	for range reader.commitChan {
		committed++
	}
	assert.Equal(t, expected, committed)
}

func TestConsumerGracefulShutdown(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	reader := newMockReader(50)
	reader.produce(50)

	consumer := newTestConsumer(reader)
	consumer.StartConsuming(ctx)

	consumed := 0
	for i := 0; i < 5; i++ {
		select {
		case <-consumer.Messages():
			consumed++
		case <-ctx.Done():
			t.Fatal("context canceled unexpectedly")
		case <-time.After(500 * time.Millisecond):
			t.Fatal("timed out waiting for a message")
		}
	}

	consumer.Stop()

	// The message channel must be closed once the loop has stopped.
	remaining := 0
	for range consumer.Messages() {
		remaining++
	}
	assert.Zero(t, remaining, "no messages should arrive after Stop")
	assert.Equal(t, 5, consumed)
	assert.True(t, reader.closed.Load(), "Stop must close the underlying reader")
}
