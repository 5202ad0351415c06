package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Encoding is the serialization of an artifact blob, derived from its name.
type Encoding int

const (
	EncodingMsgpack Encoding = iota
	EncodingJSON
)

// Codec describes how a named blob is stored.
type Codec struct {
	Encoding   Encoding
	Compressed bool
}

// CodecFor derives the codec from a blob name: ".json" selects JSON, anything
// else MessagePack; a trailing ".zst" adds zstd compression.
func CodecFor(name string) Codec {
	name = strings.ToLower(path.Base(name))
	var c Codec
	if strings.HasSuffix(name, ".zst") {
		c.Compressed = true
		name = strings.TrimSuffix(name, ".zst")
	}
	if strings.HasSuffix(name, ".json") {
		c.Encoding = EncodingJSON
	}
	return c
}

// Decode reads data into out according to the codec.
func (c Codec) Decode(data []byte, out interface{}) error {
	var r io.Reader = bytes.NewReader(data)
	if c.Compressed {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	switch c.Encoding {
	case EncodingJSON:
		return json.NewDecoder(r).Decode(out)
	default:
		return msgpack.NewDecoder(r).Decode(out)
	}
}

// Encode writes v to w according to the codec.
func (c Codec) Encode(w io.Writer, v interface{}) error {
	if c.Compressed {
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("zstd: %w", err)
		}
		if err := c.encodePlain(enc, v); err != nil {
			_ = enc.Close()
			return err
		}
		return enc.Close()
	}
	return c.encodePlain(w, v)
}

func (c Codec) encodePlain(w io.Writer, v interface{}) error {
	switch c.Encoding {
	case EncodingJSON:
		return json.NewEncoder(w).Encode(v)
	default:
		// Sorted keys keep the bytes, and so the fingerprint, stable.
		enc := msgpack.NewEncoder(w)
		enc.SetSortMapKeys(true)
		return enc.Encode(v)
	}
}
