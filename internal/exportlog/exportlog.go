// Package exportlog implements the CSV and JSON session log export
// formats of spec §6. Both formats are a closed, exactly specified
// byte layout, so this is deliberately built on a hand-written CSV
// writer and encoding/json rather than a third-party serialization
// library — see DESIGN.md for the justification.
package exportlog

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/commwatch/commwatch/internal/model"
)

// WriteCSV writes frames as the CSV export of spec §6: header
// `Timestamp,Direction,Length,Hex`, one row per frame, UTF-8, LF line
// endings, no BOM.
func WriteCSV(w io.Writer, frames []model.ProtocolFrame) error {
	if _, err := io.WriteString(w, "Timestamp,Direction,Length,Hex\n"); err != nil {
		return err
	}
	for _, f := range frames {
		ms := float64(f.Timestamp) / 1_000_000
		line := fmt.Sprintf("%s,%s,%d,\"%s\"\n",
			strconv.FormatFloat(ms, 'f', -1, 64),
			f.Direction,
			len(f.Raw),
			hexSpaced(f.Raw),
		)
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

func hexSpaced(raw []byte) string {
	const hexDigits = "0123456789abcdef"
	if len(raw) == 0 {
		return ""
	}
	buf := make([]byte, 0, len(raw)*3-1)
	for i, b := range raw {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, hexDigits[b>>4], hexDigits[b&0x0F])
	}
	return string(buf)
}

// jsonFrame is the wire shape of one frame in the JSON export, per
// spec §6: timestamp is a decimal string in nanoseconds, raw is an
// array of byte values.
type jsonFrame struct {
	ID        uint64              `json:"id"`
	Timestamp string              `json:"timestamp"`
	Direction model.Direction     `json:"direction"`
	Raw       []int               `json:"raw"`
	Decoded   *model.DecodedFrame `json:"decoded,omitempty"`
	Error     *model.FrameError   `json:"error,omitempty"`
}

type jsonLog struct {
	Version string      `json:"version"`
	Frames  []jsonFrame `json:"frames"`
}

// WriteJSON writes frames as the JSON export of spec §6:
// `{"version":"1.0","frames":[...]}`, pretty-printed with two-space
// indentation.
func WriteJSON(w io.Writer, frames []model.ProtocolFrame) error {
	out := jsonLog{Version: "1.0", Frames: make([]jsonFrame, len(frames))}
	for i, f := range frames {
		raw := make([]int, len(f.Raw))
		for j, b := range f.Raw {
			raw[j] = int(b)
		}
		out.Frames[i] = jsonFrame{
			ID:        f.ID,
			Timestamp: strconv.FormatInt(f.Timestamp, 10),
			Direction: f.Direction,
			Raw:       raw,
			Decoded:   f.Decoded,
			Error:     f.Error,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// ReadJSON parses a JSON export previously written by WriteJSON, for
// replay consumption.
func ReadJSON(r io.Reader) ([]model.ProtocolFrame, error) {
	var in jsonLog
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, fmt.Errorf("exportlog: decode: %w", err)
	}
	frames := make([]model.ProtocolFrame, len(in.Frames))
	for i, jf := range in.Frames {
		ts, err := strconv.ParseInt(jf.Timestamp, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("exportlog: frame %d: invalid timestamp %q: %w", i, jf.Timestamp, err)
		}
		raw := make([]byte, len(jf.Raw))
		for j, v := range jf.Raw {
			raw[j] = byte(v)
		}
		frames[i] = model.ProtocolFrame{
			ID:        jf.ID,
			Timestamp: ts,
			Direction: jf.Direction,
			Raw:       raw,
			Decoded:   jf.Decoded,
			Error:     jf.Error,
		}
	}
	return frames, nil
}
