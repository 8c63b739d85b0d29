package llm

import (
	"bytes"
	"encoding/json"
	"strings"
)

// LocateJSON returns the first complete JSON object or array in raw, found by
// bracket-depth scanning from the first '{' or '['. Surrounding prose and
// markdown fences are ignored. Brackets inside string literals do not count.
func LocateJSON(raw string) (string, error) {
	start := strings.IndexAny(raw, "{[")
	if start < 0 {
		return "", &ParseError{Reason: "no JSON object or array in output"}
	}

	var stack []byte
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		ch := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, ch)
		case '}', ']':
			open := byte('{')
			if ch == ']' {
				open = '['
			}
			if len(stack) == 0 || stack[len(stack)-1] != open {
				return "", &ParseError{Reason: "mismatched bracket in output"}
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return raw[start : i+1], nil
			}
		}
	}
	return "", &ParseError{Reason: "unterminated JSON value in output"}
}

// Decode locates the JSON value in raw, validates it against shape and
// unmarshals it into dst. Malformed JSON is rejected as is; it is never
// repaired.
func Decode(raw string, shape *Schema, dst any) error {
	candidate, err := LocateJSON(raw)
	if err != nil {
		return err
	}
	var generic any
	if err := strictUnmarshal([]byte(candidate), &generic); err != nil {
		return &ParseError{Reason: "invalid JSON", Err: err}
	}
	if shape != nil {
		if err := shape.Validate(generic); err != nil {
			return &ParseError{Reason: "shape mismatch for " + shape.Name(), Err: err}
		}
	}
	if dst == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(candidate), dst); err != nil {
		return &ParseError{Reason: "decode " + shape.Name(), Err: err}
	}
	return nil
}

func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return &ParseError{Reason: "trailing data after JSON value"}
	}
	return nil
}
