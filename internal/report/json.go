package report

import (
	"encoding/json"
	"io"
)

// WriteJSON writes any report as indented JSON.
func WriteJSON(w io.Writer, report any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
