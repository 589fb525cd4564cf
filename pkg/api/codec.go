package api

import (
	"encoding/json"
	"fmt"
)

// CodecName is the Connect codec name; requests use Content-Type
// application/json (or application/connect+json for streams).
const CodecName = "json"

// JSONCodec marshals plain Go messages with encoding/json.
type JSONCodec struct{}

func (JSONCodec) Name() string { return CodecName }

func (JSONCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("invalid %T: %w", msg, err)
	}
	return nil
}
