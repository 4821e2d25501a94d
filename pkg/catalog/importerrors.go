package catalog

import "encoding/json"

// headerRowOffset converts a 0-based error index into the 1-indexed data row
// that follows the header row of the source file.
const headerRowOffset = 2

// NormalizeImportErrors flattens the heterogeneous error list of a bulk
// import into ordered {row, message} pairs. Accepted element shapes, first
// match wins:
//
//  1. {row: number, message: string} passes through unchanged
//  2. a plain string becomes {idx+2, string}
//  3. an object with a string "message" uses its "row" when numeric, else idx+2
//  4. an object with a string "error" likewise
//  5. anything else becomes {idx+2, "Unknown error"}
//
// A non-array input yields an empty list. The function never fails.
func NormalizeImportErrors(raw json.RawMessage) []ImportError {
	var elems []any
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil
	}

	out := make([]ImportError, 0, len(elems))
	for idx, item := range elems {
		out = append(out, normalizeImportError(item, idx))
	}
	return out
}

func normalizeImportError(item any, idx int) ImportError {
	fallbackRow := idx + headerRowOffset

	if s, ok := item.(string); ok {
		return ImportError{Row: fallbackRow, Message: s}
	}

	rec, ok := item.(map[string]any)
	if !ok {
		return ImportError{Row: fallbackRow, Message: "Unknown error"}
	}

	row := fallbackRow
	if n, ok := rec["row"].(float64); ok {
		row = int(n)
	}

	if msg, ok := rec["message"].(string); ok {
		return ImportError{Row: row, Message: msg}
	}
	if msg, ok := rec["error"].(string); ok {
		return ImportError{Row: row, Message: msg}
	}
	return ImportError{Row: row, Message: "Unknown error"}
}
