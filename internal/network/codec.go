package network

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Codec compresses and decompresses frame payloads with zstd, the
// compression spec.md §6 pins for the PositionUpdate/BlockUpdate/
// chunk-snapshot opcodes.
type Codec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewCodec builds a reusable encoder/decoder pair.
func NewCodec() (*Codec, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &Codec{enc: enc, dec: dec}, nil
}

// Compress returns payload zstd-compressed. Safe for concurrent use.
func (c *Codec) Compress(payload []byte) []byte {
	return c.enc.EncodeAll(payload, nil)
}

// Decompress reverses Compress.
func (c *Codec) Decompress(payload []byte) ([]byte, error) {
	return c.dec.DecodeAll(payload, nil)
}

// Close releases the underlying zstd workers.
func (c *Codec) Close() {
	c.enc.Close()
	c.dec.Close()
}
