package schema

import "encoding/json"

// Reply is the inbound counterpart of Envelope. Any JSON object carrying a
// non-zero "id" qualifies; the remaining bytes are kept verbatim so the
// caller decides how to decode them.
type Reply struct {
	Id  uint32
	Raw json.RawMessage
}

// replyId extracts just the correlation id during decode.
type replyId struct {
	Id uint32 `json:"id"`
}

// DecodeReply parses raw as a reply. A parse failure or a missing/zero id
// yields ErrMalformedReply.
func DecodeReply(raw []byte) (*Reply, error) {
	var probe replyId
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, ErrMalformedReply
	}
	if probe.Id == 0 {
		return nil, ErrMalformedReply
	}
	return &Reply{Id: probe.Id, Raw: append(json.RawMessage(nil), raw...)}, nil
}

// Request is the server-side view of an Envelope: correlation id and method
// are decoded eagerly, config and data stay raw for the handler to shape.
type Request struct {
	Id     uint32          `json:"id"`
	Config json.RawMessage `json:"config,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	Method string          `json:"_method"`
}

// DecodeRequest parses raw as an inbound request envelope.
func DecodeRequest(raw []byte) (*Request, error) {
	request := &Request{}
	if err := json.Unmarshal(raw, request); err != nil {
		return nil, err
	}
	return request, nil
}

// Response is the reply shape servers send back: the echoed correlation id
// plus either a value or an error message.
type Response struct {
	Id    uint32 `json:"id"`
	Value any    `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}

// Encode renders the response to its wire bytes.
func (r *Response) Encode() ([]byte, error) {
	return json.Marshal(r)
}
