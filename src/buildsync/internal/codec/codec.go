// Package codec provides the deterministic binary encoding used for persisted records and value fingerprints.
package codec

import (
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"
)

// DigestSize is the size in bytes of a Digest.
const DigestSize = 32

// Digest is a BLAKE3-256 hash.
type Digest [DigestSize]byte

// String returns the hex encoding of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode

	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	// Core deterministic encoding: identical values always produce identical bytes.
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}

	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("codec: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("codec: zstd decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v using CBOR core deterministic encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Sum returns the BLAKE3-256 digest of data.
func Sum(data []byte) Digest {
	return Digest(blake3.Sum256(data))
}

// Fingerprint returns the digest of the deterministic encoding of v.
func Fingerprint(v any) (Digest, error) {
	data, err := Marshal(v)
	if err != nil {
		return Digest{}, fmt.Errorf("fingerprint: %w", err)
	}
	return Sum(data), nil
}

// Compress compresses data with zstd.
func Compress(data []byte) []byte {
	return zstdEncoder.EncodeAll(data, nil)
}

// Decompress reverses Compress.
func Decompress(compressed []byte) ([]byte, error) {
	data, err := zstdDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return data, nil
}
