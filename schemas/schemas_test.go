package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeetingRequestSchema(t *testing.T) {
	doc := MeetingRequestSchema()

	assert.Equal(t, "object", doc["type"])
	assert.Equal(t, false, doc["additionalProperties"])
	assert.ElementsMatch(t, []any{"title", "starts_at", "duration_min"}, doc["required"])

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"title", "starts_at", "duration_min", "location", "attendees", "priority"} {
		assert.Contains(t, props, key)
	}
}

func TestMeetingRequestSchema_ReturnsCopy(t *testing.T) {
	first := MeetingRequestSchema()
	first["type"] = "mutated"

	second := MeetingRequestSchema()
	assert.Equal(t, "object", second["type"])
}
