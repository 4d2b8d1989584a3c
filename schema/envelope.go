package schema

import "encoding/json"

// Envelope is the wire form of an outbound request. Config and Data travel
// as-is; Method rides the reserved "_method" key so it never collides with
// caller payload fields.
type Envelope struct {
	Id     uint32 `json:"id"`
	Config any    `json:"config,omitempty"`
	Data   any    `json:"data,omitempty"`
	Method string `json:"_method"`
}

// Encode renders the envelope to its wire bytes.
func (e *Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}
