// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/schema"
)

// ParseResponse turns the model's reply into a schema record. Models
// sometimes wrap the JSON in markdown code fences or prose; the parser
// strips fences and isolates the outermost object before decoding.
// Keys outside the schema are dropped and returned by name.
func ParseResponse(text string) (schema.Record, []string, error) {
	body := stripFences(text)
	body = isolateObject(body)
	if body == "" {
		return nil, nil, fmt.Errorf("no JSON object in response")
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, nil, fmt.Errorf("decoding response JSON: %w", err)
	}

	record, dropped, err := schema.ParseRecord(raw)
	if err != nil {
		return nil, nil, err
	}
	sort.Strings(dropped)
	return record, dropped, nil
}

// stripFences removes a surrounding markdown code fence, with or without
// a language tag.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		// Drop the language tag line ("json", "JSON", or empty).
		first := strings.TrimSpace(s[:i])
		if first == "" || strings.EqualFold(first, "json") {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// isolateObject returns the substring from the first '{' to the last '}',
// discarding any prose around the object.
func isolateObject(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
