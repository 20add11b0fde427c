package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/futures-stream/internal/model"
)

// Classify decodes raw and matches the unwrapped payload against the known
// shapes in order: tick, control, unrecognized. Only invalid JSON is an error.
func Classify(raw []byte, receivedAt time.Time) (Event, error) {
	v, err := decode(raw)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	ev := Event{
		Kind:       KindUnrecognized,
		Raw:        raw,
		ReceivedAt: receivedAt,
	}

	obj, ok := Unwrap(v).(map[string]any)
	if !ok {
		return ev, nil
	}

	if tick, ok := matchTick(obj); ok {
		ev.Kind = KindTick
		ev.Tick = tick
		return ev, nil
	}

	if ctrl, ok := matchControl(obj); ok {
		ev.Kind = KindControl
		ev.Control = ctrl
		return ev, nil
	}

	return ev, nil
}

// Unwrap descends into nested "data" fields until none remain. A string
// field holding a JSON document is decoded and descended into as well.
func Unwrap(v any) any {
	for {
		obj, ok := v.(map[string]any)
		if !ok {
			return v
		}
		inner, ok := obj[fieldData]
		if !ok {
			return v
		}
		if s, ok := inner.(string); ok {
			if parsed, err := decode([]byte(s)); err == nil {
				inner = parsed
			}
		}
		v = inner
	}
}

// decode parses one JSON value, keeping numbers as json.Number.
func decode(raw []byte) (any, error) {
	if !json.Valid(raw) {
		return nil, fmt.Errorf("invalid json (%d bytes)", len(raw))
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func matchTick(obj map[string]any) (*model.Tick, bool) {
	symbol, ok := obj[fieldSymbol].(string)
	if !ok {
		return nil, false
	}
	seq, ok := uintField(obj, fieldSequence)
	if !ok {
		return nil, false
	}
	bidPrice, ok := decimalField(obj, fieldBestBidPrice)
	if !ok {
		return nil, false
	}
	bidSize, ok := uintField(obj, fieldBestBidSize)
	if !ok {
		return nil, false
	}
	askPrice, ok := decimalField(obj, fieldBestAskPrice)
	if !ok {
		return nil, false
	}
	askSize, ok := uintField(obj, fieldBestAskSize)
	if !ok {
		return nil, false
	}
	ts, ok := uintField(obj, fieldTs)
	if !ok {
		return nil, false
	}

	return &model.Tick{
		Symbol:       symbol,
		Sequence:     seq,
		BestBidPrice: bidPrice,
		BestBidSize:  bidSize,
		BestAskPrice: askPrice,
		BestAskSize:  askSize,
		Timestamp:    ts,
	}, true
}

func matchControl(obj map[string]any) (*model.ControlMessage, bool) {
	id, ok := obj[fieldID].(string)
	if !ok {
		return nil, false
	}
	typ, ok := obj[fieldType].(string)
	if !ok {
		return nil, false
	}
	return &model.ControlMessage{ID: id, Type: typ}, true
}

func uintField(obj map[string]any, key string) (uint64, bool) {
	n, ok := obj[key].(json.Number)
	if !ok {
		return 0, false
	}
	u, err := strconv.ParseUint(n.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return u, true
}

// decimalField reads a price. Prices arrive as JSON strings.
func decimalField(obj map[string]any, key string) (decimal.Decimal, bool) {
	s, ok := obj[key].(string)
	if !ok {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
