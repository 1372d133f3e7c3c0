// Package notify delivers order notifications to a log or a message broker.
package notify

import (
	"time"

	"github.com/go-faster/jx"
)

// Envelope is the broker payload wrapping a notification message.
type Envelope struct {
	Message string
	SentAt  time.Time
}

// Encode writes the envelope as {"message":...,"sent_at":...}.
func (e Envelope) Encode(enc *jx.Encoder) {
	enc.ObjStart()
	enc.FieldStart("message")
	enc.Str(e.Message)
	enc.FieldStart("sent_at")
	enc.Str(e.SentAt.UTC().Format(time.RFC3339Nano))
	enc.ObjEnd()
}

// Bytes returns the encoded envelope.
func (e Envelope) Bytes() []byte {
	var enc jx.Encoder
	e.Encode(&enc)
	return enc.Bytes()
}

// DecodeEnvelope parses a payload produced by Envelope.Bytes.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var e Envelope
	err := jx.DecodeBytes(data).ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "message":
			v, err := d.Str()
			if err != nil {
				return err
			}
			e.Message = v
		case "sent_at":
			v, err := d.Str()
			if err != nil {
				return err
			}
			t, err := time.Parse(time.RFC3339Nano, v)
			if err != nil {
				return err
			}
			e.SentAt = t
		default:
			return d.Skip()
		}
		return nil
	})
	return e, err
}

type clock func() time.Time

func (c clock) envelope(msg string) Envelope {
	now := time.Now
	if c != nil {
		now = c
	}
	return Envelope{Message: msg, SentAt: now()}
}
