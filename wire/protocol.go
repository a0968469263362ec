// Package wire carries recognition requests between processes: frames go one
// way, predictions and training progress come back.
package wire

import (
	"encoding/gob"
	"fmt"
	"io"
	"time"

	"symrec/m"
)

func init() {
	gob.Register(FramePayload{})
	gob.Register(PredictionPayload{})
	gob.Register(ProgressPayload{})
}

type MessageType int

const (
	MsgFrame MessageType = iota
	MsgPrediction
	MsgProgress
	MsgDone
	MsgError
)

func (t MessageType) String() string {
	switch t {
	case MsgFrame:
		return "frame"
	case MsgPrediction:
		return "prediction"
	case MsgProgress:
		return "progress"
	case MsgDone:
		return "done"
	case MsgError:
		return "error"
	}
	return fmt.Sprintf("message(%d)", int(t))
}

type Message struct {
	Type    MessageType
	Payload interface{}
}

// FramePayload is an encoded PNG or JPEG image.
type FramePayload struct {
	ID    int
	Image []byte
}

type PredictionPayload struct {
	ID       int
	Class    m.Class
	Name     string
	Output   []float64
	NoSymbol bool
}

type ProgressPayload struct {
	Epoch    int
	Progress float64
	Error    float64
	Elapsed  time.Duration
}

func NewProgressPayload(p m.Progress) ProgressPayload {
	return ProgressPayload{Epoch: p.Epoch, Progress: p.Progress, Error: p.Error, Elapsed: p.Elapsed}
}

type Protocol struct {
	encoder *gob.Encoder
	decoder *gob.Decoder
}

func NewProtocol(r io.Reader, w io.Writer) *Protocol {
	p := &Protocol{}
	if w != nil {
		p.encoder = gob.NewEncoder(w)
	}
	if r != nil {
		p.decoder = gob.NewDecoder(r)
	}
	return p
}

func (p *Protocol) Send(msg *Message) error {
	return p.encoder.Encode(msg)
}

func (p *Protocol) Receive() (*Message, error) {
	var msg Message
	if err := p.decoder.Decode(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (p *Protocol) SendFrame(id int, image []byte) error {
	return p.Send(&Message{Type: MsgFrame, Payload: FramePayload{ID: id, Image: image}})
}

func (p *Protocol) SendPrediction(pred PredictionPayload) error {
	return p.Send(&Message{Type: MsgPrediction, Payload: pred})
}

func (p *Protocol) SendProgress(pr ProgressPayload) error {
	return p.Send(&Message{Type: MsgProgress, Payload: pr})
}

// SendDone signals that no more messages follow.
func (p *Protocol) SendDone() error {
	return p.Send(&Message{Type: MsgDone})
}

func (p *Protocol) SendError(err error) error {
	return p.Send(&Message{Type: MsgError, Payload: err.Error()})
}

// receive reads the next message, turning MsgDone into io.EOF and MsgError
// into a remote error.
func (p *Protocol) receive() (*Message, error) {
	msg, err := p.Receive()
	if err != nil {
		return nil, err
	}
	switch msg.Type {
	case MsgError:
		return nil, fmt.Errorf("remote error: %v", msg.Payload)
	case MsgDone:
		return nil, io.EOF
	}
	return msg, nil
}

func (p *Protocol) ReceiveFrame() (*FramePayload, error) {
	msg, err := p.receive()
	if err != nil {
		return nil, err
	}
	if msg.Type != MsgFrame {
		return nil, fmt.Errorf("expected frame message, got %v", msg.Type)
	}
	payload, ok := msg.Payload.(FramePayload)
	if !ok {
		return nil, fmt.Errorf("invalid frame payload type %T", msg.Payload)
	}
	return &payload, nil
}

// ReceivePrediction waits for the next prediction. Progress messages that
// arrive first are handed to onProgress, which may be nil.
func (p *Protocol) ReceivePrediction(onProgress func(ProgressPayload)) (*PredictionPayload, error) {
	for {
		msg, err := p.receive()
		if err != nil {
			return nil, err
		}
		switch msg.Type {
		case MsgProgress:
			pr, ok := msg.Payload.(ProgressPayload)
			if !ok {
				return nil, fmt.Errorf("invalid progress payload type %T", msg.Payload)
			}
			if onProgress != nil {
				onProgress(pr)
			}
		case MsgPrediction:
			payload, ok := msg.Payload.(PredictionPayload)
			if !ok {
				return nil, fmt.Errorf("invalid prediction payload type %T", msg.Payload)
			}
			return &payload, nil
		default:
			return nil, fmt.Errorf("expected prediction message, got %v", msg.Type)
		}
	}
}
