package report

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Parse extracts an Analysis from the raw model output.
// It never fails: text that holds no decodable object becomes the summary itself.
func Parse(raw string) Analysis {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.IndexByte(cleaned, '{')
	if start < 0 {
		return emptyAnalysis(cleaned)
	}

	// only the first value is decoded, trailing prose is ignored
	var obj map[string]json.RawMessage
	if err := json.NewDecoder(strings.NewReader(cleaned[start:])).Decode(&obj); err != nil {
		return emptyAnalysis(cleaned)
	}

	return Analysis{
		Analysis:       textValue(obj["analysis"]),
		PassedStudents: listValue(obj["passedStudents"]),
		FailedStudents: listValue(obj["failedStudents"]),
	}
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// textValue returns strings as is and any other non-null value as compact JSON.
func textValue(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// listValue never returns nil. Values that are not arrays yield an empty list; null elements are dropped.
func listValue(raw json.RawMessage) []string {
	list := []string{}
	if isNull(raw) {
		return list
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return list
	}
	for _, e := range elems {
		if isNull(e) {
			continue
		}
		list = append(list, textValue(e))
	}
	return list
}
