package dfu

import "context"

// ChunkPlanner splits an application image into fixed size chunks and paces
// them against the packet receipt notification interval.
//
// The cursor counts chunks already sent and only moves forward.
type ChunkPlanner struct {
	data      []byte
	chunkSize int
	cursor    int
	total     int
}

// Window summarizes one SendWindow call.
type Window struct {
	// Sent is the number of chunks written during the window
	Sent int

	// Exhausted is true once every chunk has been sent
	Exhausted bool

	// AwaitAck is true when the window stopped on a PRN boundary and the
	// device will report its received offset
	AwaitAck bool
}

// NewChunkPlanner creates a planner over data. chunkSize must be positive.
func NewChunkPlanner(data []byte, chunkSize int) *ChunkPlanner {
	if chunkSize <= 0 {
		panic("chunk size must be positive")
	}
	return &ChunkPlanner{
		data:      data,
		chunkSize: chunkSize,
		total:     (len(data) + chunkSize - 1) / chunkSize,
	}
}

// TotalChunks returns ceil(len(data) / chunkSize).
func (p *ChunkPlanner) TotalChunks() int {
	return p.total
}

// Cursor returns the number of chunks sent.
func (p *ChunkPlanner) Cursor() int {
	return p.cursor
}

// Done reports whether every chunk has been sent.
func (p *ChunkPlanner) Done() bool {
	return p.cursor >= p.total
}

// ExpectedOffset returns the byte offset the device should acknowledge:
// cursor*chunkSize, clamped to the image length after a short final chunk.
func (p *ChunkPlanner) ExpectedOffset() uint32 {
	off := p.cursor * p.chunkSize
	if off > len(p.data) {
		off = len(p.data)
	}
	return uint32(off)
}

// Chunk returns chunk i. The final chunk may be shorter than chunkSize.
func (p *ChunkPlanner) Chunk(i int) []byte {
	start := i * p.chunkSize
	end := start + p.chunkSize
	if end > len(p.data) {
		end = len(p.data)
	}
	return p.data[start:end]
}

// SendWindow sends chunks from the cursor without waiting for acknowledgments
// until the image is exhausted or the cursor reaches a multiple of prn.
// The cursor advances only after send succeeds.
func (p *ChunkPlanner) SendWindow(ctx context.Context, prn int, send func(chunk []byte) error) (Window, error) {
	if prn <= 0 {
		prn = 1
	}

	var w Window
	for !p.Done() {
		if err := ctx.Err(); err != nil {
			return w, err
		}
		if err := send(p.Chunk(p.cursor)); err != nil {
			return w, err
		}
		p.cursor++
		w.Sent++

		if p.cursor%prn == 0 {
			break
		}
	}

	w.Exhausted = p.Done()
	w.AwaitAck = w.Sent > 0 && p.cursor%prn == 0
	return w, nil
}
