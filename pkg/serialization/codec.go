// Package serialization encodes snapshots and flow records for the
// repository adapters. A pluggable codec handles the byte representation;
// optional compression and AES-GCM encryption wrap it.
package serialization

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec converts values to and from a byte representation.
type Codec interface {
	Encode(v interface{}) ([]byte, error)
	Decode(data []byte, v interface{}) error
	Name() string
}

// JSONCodec encodes with encoding/json. Human-readable, interoperable with
// any collaborator that speaks JSON.
type JSONCodec struct{}

func (JSONCodec) Encode(v interface{}) ([]byte, error)    { return json.Marshal(v) }
func (JSONCodec) Decode(data []byte, v interface{}) error { return json.Unmarshal(data, v) }
func (JSONCodec) Name() string                            { return "json" }

// MsgPackCodec encodes with MessagePack: smaller and faster than JSON for
// snapshot-heavy workloads.
type MsgPackCodec struct{}

func (MsgPackCodec) Encode(v interface{}) ([]byte, error)    { return msgpack.Marshal(v) }
func (MsgPackCodec) Decode(data []byte, v interface{}) error { return msgpack.Unmarshal(data, v) }
func (MsgPackCodec) Name() string                            { return "msgpack" }
