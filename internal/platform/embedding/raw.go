package embedding

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrProviderUnavailable covers every provider-side failure: transport, auth,
// and responses whose shape is not a known RawEmbeddingResponse variant.
var ErrProviderUnavailable = errors.New("embedding provider unavailable")

// RawEmbeddingResponse is what a provider hands back before normalization.
// Implementations: FloatArray and ValuesObjects.
type RawEmbeddingResponse interface {
	Floats() ([]float32, error)
	isRawEmbedding()
}

// FloatArray is a bare list of numbers ([0.1, 0.2, ...]).
type FloatArray []float32

func (f FloatArray) Floats() ([]float32, error) {
	if len(f) == 0 {
		return nil, fmt.Errorf("%w: empty float array", ErrProviderUnavailable)
	}
	return []float32(f), nil
}

func (FloatArray) isRawEmbedding() {}

type ValuesObject struct {
	Values []float32 `json:"values"`
}

// ValuesObjects is a list of {"values": [...]} objects; the first one is used.
type ValuesObjects []ValuesObject

func (v ValuesObjects) Floats() ([]float32, error) {
	if len(v) == 0 || len(v[0].Values) == 0 {
		return nil, fmt.Errorf("%w: no values in response", ErrProviderUnavailable)
	}
	return v[0].Values, nil
}

func (ValuesObjects) isRawEmbedding() {}

// DecodeRaw classifies a JSON payload into one of the RawEmbeddingResponse variants.
func DecodeRaw(payload []byte) (RawEmbeddingResponse, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: unrecognized response shape", ErrProviderUnavailable)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if len(elems) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrProviderUnavailable)
	}

	switch first := bytes.TrimSpace(elems[0]); {
	case len(first) > 0 && first[0] == '{':
		var objs ValuesObjects
		if err := json.Unmarshal(trimmed, &objs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
		return objs, nil
	default:
		var floats FloatArray
		if err := json.Unmarshal(trimmed, &floats); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
		return floats, nil
	}
}
