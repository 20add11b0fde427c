package router

import (
	"errors"
	"time"

	"github.com/rickgao/futures-stream/internal/model"
)

// ErrMalformedFrame is returned by Classify for payloads that are not valid JSON.
var ErrMalformedFrame = errors.New("malformed frame")

// EventKind identifies which shape a frame matched.
type EventKind int

const (
	KindUnrecognized EventKind = iota
	KindTick
	KindControl
)

func (k EventKind) String() string {
	switch k {
	case KindTick:
		return "tick"
	case KindControl:
		return "control"
	default:
		return "unrecognized"
	}
}

// Event is one classified inbound frame. Exactly one of Tick or Control is
// set for KindTick and KindControl; neither for KindUnrecognized.
type Event struct {
	Kind       EventKind
	Tick       *model.Tick
	Control    *model.ControlMessage
	Raw        []byte
	ReceivedAt time.Time
}

// Field names of the tick payload.
const (
	fieldData         = "data"
	fieldSymbol       = "symbol"
	fieldSequence     = "sequence"
	fieldBestBidPrice = "bestBidPrice"
	fieldBestBidSize  = "bestBidSize"
	fieldBestAskPrice = "bestAskPrice"
	fieldBestAskSize  = "bestAskSize"
	fieldTs           = "ts"
	fieldID           = "id"
	fieldType         = "type"
)
