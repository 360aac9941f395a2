// Package schemas embeds the JSON Schemas exchanged with the inference backend.
package schemas

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

// MeetingRequestSchemaName is the resource name the schema is compiled under.
const MeetingRequestSchemaName = "meeting_request.schema.json"

//go:embed meeting_request.schema.json
var MeetingRequestSchemaJSON string

// MeetingRequestSchema returns a fresh decoded copy of the meeting request
// schema, suitable as the schema descriptor sent to a model.
func MeetingRequestSchema() map[string]any {
	var doc map[string]any
	if err := json.Unmarshal([]byte(MeetingRequestSchemaJSON), &doc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", MeetingRequestSchemaName, err))
	}
	return doc
}
