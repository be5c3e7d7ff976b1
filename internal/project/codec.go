package project

import (
	"bytes"
	"fmt"
	"image/png"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/example/texturemixer/internal/pixbuf"
)

var zstdEncPool = sync.Pool{
	New: func() any {
		enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		return enc
	},
}

var zstdDecPool = sync.Pool{
	New: func() any {
		dec, _ := zstd.NewReader(nil)
		return dec
	},
}

// encodeSnapshot stores a buffer as zstd-compressed PNG.
func encodeSnapshot(b *pixbuf.Buffer) ([]byte, error) {
	var raw bytes.Buffer
	if err := png.Encode(&raw, b.NRGBA()); err != nil {
		return nil, fmt.Errorf("png encode: %w", err)
	}
	var out bytes.Buffer
	enc := zstdEncPool.Get().(*zstd.Encoder)
	defer zstdEncPool.Put(enc)
	enc.Reset(&out)
	if _, err := enc.Write(raw.Bytes()); err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("zstd encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("zstd encode: %w", err)
	}
	return out.Bytes(), nil
}

func decodeSnapshot(data []byte) (*pixbuf.Buffer, error) {
	dec := zstdDecPool.Get().(*zstd.Decoder)
	defer zstdDecPool.Put(dec)
	if err := dec.Reset(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	img, err := png.Decode(dec)
	if err != nil {
		return nil, fmt.Errorf("png decode: %w", err)
	}
	return pixbuf.FromImage(img)
}
