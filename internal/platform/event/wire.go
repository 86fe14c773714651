package event

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Wire is the NDJSON form shared by the file source, the event log and the
// source plugin. Producers send either a type name or a numeric code.
type Wire struct {
	Package   string `json:"package"`
	Class     string `json:"class,omitempty"`
	Type      string `json:"type,omitempty"`
	Code      *int   `json:"code,omitempty"`
	Timestamp int64  `json:"ts"`
	Date      string `json:"date,omitempty"`
	Source    string `json:"source,omitempty"`
	DX        *int64 `json:"dx,omitempty"`
	DY        *int64 `json:"dy,omitempty"`
	Value     *int64 `json:"value,omitempty"`
}

func (w Wire) RawEvent() (RawEvent, error) {
	var t Type
	switch {
	case strings.TrimSpace(w.Type) != "":
		parsed, err := ParseType(w.Type)
		if err != nil {
			return RawEvent{}, err
		}
		t = parsed
	case w.Code != nil:
		classified, ok := Classify(*w.Code)
		if !ok {
			return RawEvent{}, fmt.Errorf("unknown event code %d", *w.Code)
		}
		t = classified
	default:
		return RawEvent{}, fmt.Errorf("event type is required")
	}
	if w.Timestamp <= 0 {
		return RawEvent{}, fmt.Errorf("event timestamp is required")
	}
	return RawEvent{
		PackageName:  w.Package,
		ClassName:    w.Class,
		Type:         t,
		TimestampMs:  w.Timestamp,
		LocalDate:    w.Date,
		Source:       w.Source,
		ScrollDeltaX: w.DX,
		ScrollDeltaY: w.DY,
		Value:        w.Value,
	}, nil
}

func ToWire(e RawEvent) Wire {
	return Wire{
		Package:   e.PackageName,
		Class:     e.ClassName,
		Type:      e.Type.String(),
		Timestamp: e.TimestampMs,
		Date:      e.LocalDate,
		Source:    e.Source,
		DX:        e.ScrollDeltaX,
		DY:        e.ScrollDeltaY,
		Value:     e.Value,
	}
}

// DecodeLine parses one NDJSON line.
func DecodeLine(line []byte) (RawEvent, error) {
	w := Wire{}
	if err := json.Unmarshal(line, &w); err != nil {
		return RawEvent{}, fmt.Errorf("decode event: %w", err)
	}
	return w.RawEvent()
}

func EncodeLine(e RawEvent) ([]byte, error) {
	payload, err := json.Marshal(ToWire(e))
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return append(payload, '\n'), nil
}
