package serialization

import (
	"bytes"
	"compress/gzip"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Compression selects the compression layer applied after encoding.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// Config holds the serializer settings.
type Config struct {
	Codec       Codec
	Compression Compression
	EncryptKey  []byte // AES-256 key (32 bytes); empty disables encryption
}

// Serializer runs the encode -> compress -> encrypt pipeline and its
// inverse.
type Serializer struct {
	config Config
}

// New creates a serializer from config. A nil codec defaults to msgpack.
func New(config Config) *Serializer {
	if config.Codec == nil {
		config.Codec = MsgPackCodec{}
	}
	return &Serializer{config: config}
}

// Default returns a serializer suitable for snapshot stores: msgpack encoded
// and zstd compressed, no encryption.
func Default() *Serializer {
	return New(Config{Codec: MsgPackCodec{}, Compression: CompressionZstd})
}

// Marshal encodes, compresses, and (when a key is configured) encrypts v.
func (s *Serializer) Marshal(v interface{}) ([]byte, error) {
	data, err := s.config.Codec.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	data, err = s.compress(data)
	if err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}

	if len(s.config.EncryptKey) > 0 {
		data, err = s.encrypt(data)
		if err != nil {
			return nil, fmt.Errorf("encrypt: %w", err)
		}
	}
	return data, nil
}

// Unmarshal reverses Marshal into v.
func (s *Serializer) Unmarshal(data []byte, v interface{}) error {
	var err error

	if len(s.config.EncryptKey) > 0 {
		data, err = s.decrypt(data)
		if err != nil {
			return fmt.Errorf("decrypt: %w", err)
		}
	}

	data, err = s.decompress(data)
	if err != nil {
		return fmt.Errorf("decompress: %w", err)
	}

	if err := s.config.Codec.Decode(data, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func (s *Serializer) compress(data []byte) ([]byte, error) {
	switch s.config.Compression {
	case CompressionGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	default:
		return data, nil
	}
}

func (s *Serializer) decompress(data []byte) ([]byte, error) {
	switch s.config.Compression {
	case CompressionGzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)
	default:
		return data, nil
	}
}

// encrypt seals data with AES-GCM, prepending the nonce.
func (s *Serializer) encrypt(data []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.config.EncryptKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, data, nil), nil
}

func (s *Serializer) decrypt(data []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.config.EncryptKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(data) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext shorter than nonce")
	}
	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
