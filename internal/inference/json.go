package inference

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fenceRe  = regexp.MustCompile("(?im)^```(?:json)?\\s*|\\s*```$")
	objectRe = regexp.MustCompile(`(?s)\{.*\}`)
)

// ExtractFirstJSON locates the JSON object in a model reply. A reply that is
// already a bare object is returned as-is; otherwise code fences are stripped
// and the outermost {...} span is returned.
func ExtractFirstJSON(text string) (string, error) {
	t := strings.TrimSpace(text)
	if strings.HasPrefix(t, "{") && strings.HasSuffix(t, "}") {
		return t, nil
	}

	t = fenceRe.ReplaceAllString(t, "")
	m := objectRe.FindString(t)
	if m == "" {
		return "", ErrNoJSON
	}
	return m, nil
}

// DecodeDraft extracts and decodes the JSON object in a model reply.
func DecodeDraft(text string) (map[string]any, error) {
	raw, err := ExtractFirstJSON(text)
	if err != nil {
		return nil, err
	}

	var draft map[string]any
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if draft == nil {
		return nil, fmt.Errorf("%w: reply decoded to null", ErrMalformedResponse)
	}
	return draft, nil
}

func minify(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding JSON: %w", err)
	}
	return string(b), nil
}
