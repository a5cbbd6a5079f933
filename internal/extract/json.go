package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/caselens/caselens/internal/schema"
)

var fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// DecodeRecord parses a model response into a record, tolerating a fenced
// code block or surrounding prose around the JSON object. Non-string values
// are rendered to strings; nested values are re-encoded as JSON text.
func DecodeRecord(raw string) (schema.Record, error) {
	payload := strings.TrimSpace(raw)
	if m := fencedJSONRe.FindStringSubmatch(payload); m != nil {
		payload = m[1]
	} else if !strings.HasPrefix(payload, "{") {
		start := strings.Index(payload, "{")
		end := strings.LastIndex(payload, "}")
		if start < 0 || end <= start {
			return nil, errors.New("no JSON object in model response")
		}
		payload = payload[start : end+1]
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}

	rec := make(schema.Record, len(parsed))
	for k, v := range parsed {
		rec[k] = stringify(v)
	}
	return rec, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
