package events

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteText writes entries as newline-delimited "t=<step> | <description>"
// records, per spec.md §6's event export format.
func WriteText(w io.Writer, entries []StructuralEvent) error {
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "t=%d | %s\n", e.Step, e.Description); err != nil {
			return err
		}
	}
	return nil
}

type jsonEvent struct {
	ID          string `json:"id"`
	Step        int64  `json:"step"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	X           *int   `json:"x,omitempty"`
	Y           *int   `json:"y,omitempty"`
}

// WriteJSON writes entries as a JSON array, per spec.md §6's "structured
// sink" event export format.
func WriteJSON(w io.Writer, entries []StructuralEvent) error {
	out := make([]jsonEvent, len(entries))
	for i, e := range entries {
		je := jsonEvent{ID: e.ID, Step: e.Step, Kind: e.Kind.String(), Description: e.Description}
		if e.Location != nil {
			x, y := e.Location.X, e.Location.Y
			je.X, je.Y = &x, &y
		}
		out[i] = je
	}
	enc := json.NewEncoder(w)
	return enc.Encode(out)
}
