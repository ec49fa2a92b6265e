package cache

import "encoding/json"

// Codec serializes values for L2's on-disk tier. The default, JSONCodec,
// is stdlib-only: the cache's value type is whatever the owning
// subsystem chooses (resolved contexts, package lists, scan results),
// and encoding/json round-trips any of those without requiring a
// registry of concrete types the way encoding/gob would.
type Codec[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

// JSONCodec is the default Codec.
type JSONCodec[V any] struct{}

func (JSONCodec[V]) Marshal(v V) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec[V]) Unmarshal(data []byte) (V, error) {
	var v V
	err := json.Unmarshal(data, &v)
	return v, err
}
