package protocol

import "github.com/google/uuid"

// Body is implemented by every concrete message payload type. Deliberately
// not json/gob-driven: each body owns its exact binary layout so the wire
// format never depends on reflection.
type Body interface {
	MarshalBinary() ([]byte, error)
	UnmarshalBinary([]byte) error
}

// Factory constructs a zero-valued Body for a registered MessageKind, ready
// to have UnmarshalBinary called on it.
type Factory func() Body

// Message is a tagged record: a MessageKind, an optional correlator
// requestId, and a typed body. RequestID is uuid.Nil when the message does
// not participate in request/response correlation.
type Message struct {
	Type      MessageKind
	RequestID uuid.UUID
	Body      Body
}

// HasRequestID reports whether this message carries a correlator id.
func (m Message) HasRequestID() bool {
	return m.RequestID != uuid.Nil
}
