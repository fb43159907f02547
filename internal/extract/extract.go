// Package extract parses structured output from raw model text.
//
// Providers frequently wrap structured output in a markdown-style fenced
// block even when asked for bare JSON. Extraction strips one outer fence
// when present and parses the remainder as exactly one JSON value. No
// repair is attempted: malformed output is returned as a parse error.
package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// fenceMarker is the delimiter line used to wrap model output in a code block.
const fenceMarker = "```"

// ErrTrailingData is returned when more than one JSON value is present.
var ErrTrailingData = errors.New("trailing data after JSON value")

// JSON returns the raw JSON bytes of the single value contained in text,
// after trimming whitespace and stripping one outer fenced block when the
// text starts with the fence marker. The fence's opening line may carry a
// language tag; both the opening and closing lines are dropped.
func JSON(text string) (json.RawMessage, error) {
	s := strings.TrimSpace(text)

	if strings.HasPrefix(s, fenceMarker) {
		lines := strings.Split(s, "\n")
		if len(lines) >= 2 {
			lines = lines[1 : len(lines)-1]
		}
		s = strings.TrimSpace(strings.Join(lines, "\n"))
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return nil, ErrTrailingData
	}

	return json.RawMessage(s), nil
}

// Value parses the single JSON value contained in text into its generic Go
// representation (map[string]any, []any, string, float64, bool, nil).
func Value(text string) (any, error) {
	raw, err := JSON(text)
	if err != nil {
		return nil, err
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return value, nil
}
