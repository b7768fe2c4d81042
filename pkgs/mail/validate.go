package mail

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/emersion/go-imap/v2"

	"github.com/jtokib/yahoo-mail-mcp-server/pkgs/mailerr"
)

// ValidateUIDs checks an arbitrary input value claimed to be a list of
// message UIDs and returns the validated UIDs with duplicates removed,
// preserving first-seen order. It performs no I/O; callers invoke it
// before opening any folder.
//
// Failure order: missing input, wrong shape, empty list, non-positive or
// non-integer elements (all offending values are named).
func ValidateUIDs(input any) ([]imap.UID, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: uids is required", mailerr.ErrMissingInput)
	}

	elems, ok := asSlice(input)
	if !ok {
		return nil, fmt.Errorf("%w, got %T", mailerr.ErrWrongShape, input)
	}
	if len(elems) == 0 {
		return nil, mailerr.ErrEmptyBatch
	}

	uids := make([]imap.UID, 0, len(elems))
	seen := make(map[imap.UID]bool, len(elems))
	var bad []string

	for _, e := range elems {
		n, ok := asPositiveInt(e)
		if !ok {
			bad = append(bad, fmt.Sprintf("%v", e))
			continue
		}
		uid := imap.UID(n)
		if seen[uid] {
			continue
		}
		seen[uid] = true
		uids = append(uids, uid)
	}

	if len(bad) > 0 {
		return nil, fmt.Errorf("%w: UIDs must be positive integers, got [%s]",
			mailerr.ErrInvalidIdentifier, strings.Join(bad, ", "))
	}
	return uids, nil
}

// asSlice normalizes the supported input shapes into a generic slice.
// JSON decoding yields []any; typed callers may pass integer slices
// directly.
func asSlice(input any) ([]any, bool) {
	switch v := input.(type) {
	case []any:
		return v, true
	case []int:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	case []int64:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	case []uint32:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	case []float64:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	default:
		return nil, false
	}
}

// asPositiveInt reports whether v is an integer value strictly greater
// than zero that fits a uint32, and returns it.
func asPositiveInt(v any) (uint32, bool) {
	switch n := v.(type) {
	case int:
		if n > 0 && int64(n) <= math.MaxUint32 {
			return uint32(n), true
		}
	case int64:
		if n > 0 && n <= math.MaxUint32 {
			return uint32(n), true
		}
	case uint32:
		if n > 0 {
			return n, true
		}
	case float64:
		// JSON numbers decode as float64; reject fractional values.
		if n > 0 && n <= math.MaxUint32 && n == math.Trunc(n) {
			return uint32(n), true
		}
	case json.Number:
		i, err := n.Int64()
		if err == nil && i > 0 && i <= math.MaxUint32 {
			return uint32(i), true
		}
	}
	return 0, false
}
