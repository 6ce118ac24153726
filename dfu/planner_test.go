package dfu

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkPlannerTotalChunks(t *testing.T) {
	tests := []struct {
		length int
		want   int
	}{
		{1, 1},
		{19, 1},
		{20, 1},
		{21, 2},
		{47, 3},
		{200, 10},
		{201, 11},
		{4096, 205},
	}

	for _, tt := range tests {
		p := NewChunkPlanner(make([]byte, tt.length), 20)
		assert.Equal(t, tt.want, p.TotalChunks(), "length %d", tt.length)
	}
}

func TestChunkPlannerChunkLengthsSumToImage(t *testing.T) {
	for _, length := range []int{1, 20, 47, 199, 200, 1001} {
		data := make([]byte, length)
		for i := range data {
			data[i] = byte(i)
		}
		p := NewChunkPlanner(data, 20)

		var got []byte
		for {
			w, err := p.SendWindow(context.Background(), 10, func(chunk []byte) error {
				require.LessOrEqual(t, len(chunk), 20)
				got = append(got, chunk...)
				return nil
			})
			require.NoError(t, err)
			if w.Exhausted {
				break
			}
		}

		assert.Equal(t, data, got, "length %d", length)

		last := p.Chunk(p.TotalChunks() - 1)
		wantLast := length % 20
		if wantLast == 0 {
			wantLast = 20
		}
		assert.Len(t, last, wantLast, "length %d", length)
	}
}

func TestChunkPlannerSmallImageSendsWithoutAck(t *testing.T) {
	p := NewChunkPlanner(make([]byte, 47), 20)

	var lengths []int
	w, err := p.SendWindow(context.Background(), 10, func(chunk []byte) error {
		lengths = append(lengths, len(chunk))
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []int{20, 20, 7}, lengths)
	assert.Equal(t, Window{Sent: 3, Exhausted: true, AwaitAck: false}, w)
	assert.Equal(t, 3, p.Cursor())
	assert.Equal(t, uint32(47), p.ExpectedOffset())
}

func TestChunkPlannerStopsOnPRNBoundary(t *testing.T) {
	p := NewChunkPlanner(make([]byte, 200), 20)

	w, err := p.SendWindow(context.Background(), 10, func([]byte) error { return nil })
	require.NoError(t, err)

	assert.Equal(t, Window{Sent: 10, Exhausted: true, AwaitAck: true}, w)
	assert.Equal(t, uint32(200), p.ExpectedOffset())
}

func TestChunkPlannerExpectedOffsetSteps(t *testing.T) {
	const prn, chunk = 10, 20
	p := NewChunkPlanner(make([]byte, 1234), chunk)

	var offsets []uint32
	for !p.Done() {
		w, err := p.SendWindow(context.Background(), prn, func([]byte) error { return nil })
		require.NoError(t, err)
		if w.AwaitAck {
			offsets = append(offsets, p.ExpectedOffset())
		}
	}

	require.NotEmpty(t, offsets)
	for i := 1; i < len(offsets); i++ {
		assert.Equal(t, uint32(prn*chunk), offsets[i]-offsets[i-1])
	}
	assert.Equal(t, uint32(1234), p.ExpectedOffset())
}

func TestChunkPlannerSendErrorKeepsCursor(t *testing.T) {
	p := NewChunkPlanner(make([]byte, 100), 20)
	boom := errors.New("boom")

	calls := 0
	w, err := p.SendWindow(context.Background(), 10, func([]byte) error {
		calls++
		if calls == 3 {
			return boom
		}
		return nil
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, w.Sent)
	assert.Equal(t, 2, p.Cursor())
}

func TestChunkPlannerCancelled(t *testing.T) {
	p := NewChunkPlanner(make([]byte, 100), 20)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.SendWindow(ctx, 10, func([]byte) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, p.Cursor())
}
