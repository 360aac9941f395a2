package validation

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spboyer/booker/internal/models"
	"github.com/spboyer/booker/schemas"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

// meetingRequestDoc is the decoded schema, walked to find required and known
// keys for a given instance location.
var meetingRequestDoc map[string]any

// meetingRequestSchema is the compiled JSON Schema for extraction drafts.
var meetingRequestSchema *jsonschema.Schema

func init() {
	meetingRequestDoc = schemas.MeetingRequestSchema()
	meetingRequestSchema = mustCompileSchema(schemas.MeetingRequestSchemaJSON, schemas.MeetingRequestSchemaName)
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// checkShape validates draft against the meeting request schema and maps
// every leaf failure onto a FieldError. Fields listed in skip already carry
// an error and are not reported again.
func checkShape(draft map[string]any, skip map[string]bool) []models.FieldError {
	err := meetingRequestSchema.Validate(draft)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []models.FieldError{{
			Kind:    models.ErrorKindWrongType,
			Message: fmt.Sprintf("schema: %v", err),
		}}
	}

	var errs []models.FieldError
	collectSchemaErrors(ve, draft, &errs)

	type key struct {
		field string
		kind  models.ErrorKind
	}
	seen := map[key]bool{}
	out := errs[:0]
	for _, fe := range errs {
		k := key{fe.Field, fe.Kind}
		if skip[fe.Field] || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, fe)
	}
	return out
}

func collectSchemaErrors(ve *jsonschema.ValidationError, draft map[string]any, errs *[]models.FieldError) {
	if len(ve.Causes) > 0 {
		for _, c := range ve.Causes {
			collectSchemaErrors(c, draft, errs)
		}
		return
	}

	loc := ve.InstanceLocation
	field := strings.Join(loc, ".")
	msg := ve.ErrorKind.LocalizedString(defaultPrinter)

	switch lastKeyword(ve.ErrorKind.KeywordPath()) {
	case "required":
		for _, key := range missingKeys(loc, draft) {
			*errs = append(*errs, models.FieldError{
				Field:   joinField(field, key),
				Kind:    models.ErrorKindMissingField,
				Message: "field required",
			})
		}
	case "additionalProperties":
		for _, key := range unexpectedKeys(loc, draft) {
			*errs = append(*errs, models.FieldError{
				Field:   joinField(field, key),
				Kind:    models.ErrorKindUnexpectedField,
				Message: "extra fields not permitted",
			})
		}
	case "type":
		*errs = append(*errs, models.FieldError{Field: field, Kind: models.ErrorKindWrongType, Message: msg})
	case "exclusiveMinimum", "minimum":
		kind := models.ErrorKindInvalidValue
		if field == "duration_min" {
			kind = models.ErrorKindInvalidDuration
			msg = "duration must be > 0"
		}
		*errs = append(*errs, models.FieldError{Field: field, Kind: kind, Message: msg})
	default:
		*errs = append(*errs, models.FieldError{Field: field, Kind: models.ErrorKindInvalidValue, Message: msg})
	}
}

func lastKeyword(path []string) string {
	if len(path) == 0 {
		return ""
	}
	return path[len(path)-1]
}

func joinField(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

// missingKeys lists the required keys absent from the object at loc.
func missingKeys(loc []string, draft map[string]any) []string {
	node := schemaAt(loc)
	obj, _ := instanceAt(loc, draft).(map[string]any)

	var missing []string
	required, _ := node["required"].([]any)
	for _, r := range required {
		key, _ := r.(string)
		if _, ok := obj[key]; !ok && key != "" {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

// unexpectedKeys lists keys of the object at loc that the schema does not declare.
func unexpectedKeys(loc []string, draft map[string]any) []string {
	node := schemaAt(loc)
	obj, _ := instanceAt(loc, draft).(map[string]any)
	props, _ := node["properties"].(map[string]any)

	var extra []string
	for key := range obj {
		if _, ok := props[key]; !ok {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return extra
}

// schemaAt walks the decoded schema along an instance location. Array
// indexes descend into "items".
func schemaAt(loc []string) map[string]any {
	node := meetingRequestDoc
	for _, seg := range loc {
		if props, ok := node["properties"].(map[string]any); ok {
			if next, ok := props[seg].(map[string]any); ok {
				node = next
				continue
			}
		}
		if items, ok := node["items"].(map[string]any); ok {
			node = items
			continue
		}
		return nil
	}
	return node
}

func instanceAt(loc []string, draft map[string]any) any {
	var cur any = draft
	for _, seg := range loc {
		switch v := cur.(type) {
		case map[string]any:
			cur = v[seg]
		case []any:
			idx := -1
			if _, err := fmt.Sscanf(seg, "%d", &idx); err != nil || idx < 0 || idx >= len(v) {
				return nil
			}
			cur = v[idx]
		default:
			return nil
		}
	}
	return cur
}

// sortFieldErrors orders errors by field, then kind, so repeated validations of
// the same draft yield identical error lists.
func sortFieldErrors(errs []models.FieldError) {
	slices.SortStableFunc(errs, func(a, b models.FieldError) int {
		if c := strings.Compare(a.Field, b.Field); c != 0 {
			return c
		}
		return strings.Compare(string(a.Kind), string(b.Kind))
	})
}
