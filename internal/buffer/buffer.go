package buffer

// ChunkBuffer accumulates streamed text chunks and exposes the full text.
type ChunkBuffer struct {
	parts []string
	size  int
}

// New creates an empty ChunkBuffer.
func New() *ChunkBuffer {
	return &ChunkBuffer{parts: make([]string, 0)}
}

// Append adds one streamed chunk.
func (cb *ChunkBuffer) Append(chunk string) {
	if chunk == "" {
		return
	}
	cb.parts = append(cb.parts, chunk)
	cb.size += len(chunk)
}

// Len returns the accumulated byte length.
func (cb *ChunkBuffer) Len() int {
	return cb.size
}

// Chunks returns the number of appended chunks.
func (cb *ChunkBuffer) Chunks() int {
	return len(cb.parts)
}

// String returns the accumulated text.
func (cb *ChunkBuffer) String() string {
	if len(cb.parts) == 0 {
		return ""
	}
	result := make([]byte, 0, cb.size)
	for _, p := range cb.parts {
		result = append(result, []byte(p)...)
	}
	return string(result)
}

// Reset clears the buffer.
func (cb *ChunkBuffer) Reset() {
	cb.parts = cb.parts[:0]
	cb.size = 0
}
