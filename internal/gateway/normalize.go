package gateway

import (
	"bytes"
	"encoding/json"
)

// The automation endpoint replies with whatever shape the active workflow
// happens to produce. Replies are flattened to display text by probing a fixed
// list of well-known fields; the order below is load-bearing and must not be
// reshuffled.
var replyFields = []string{"response", "message", "output", "text"}

// workflowStartedSentinel is a quirk of the upstream automation tool: some
// workflows acknowledge the trigger with {"message":"Workflow was started"}
// before any real payload exists. That value in the message field is treated
// as absent. It applies to the message field only.
const workflowStartedSentinel = "Workflow was started"

// Normalize extracts display text from a raw webhook reply body.
//
// Fields are tried in priority order; a field is usable when it holds a
// non-empty JSON string. When no field is usable the whole body is returned
// serialized as-is, so the user always sees something. The returned error is
// non-nil only when body is not valid JSON.
func Normalize(body []byte) (string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		// Non-object JSON (arrays, bare strings) still normalizes; only
		// unparseable bodies are an error.
		if !json.Valid(body) {
			return "", err
		}
		return compact(body), nil
	}

	for _, name := range replyFields {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || s == "" {
			continue
		}
		if name == "message" && s == workflowStartedSentinel {
			continue
		}
		return s, nil
	}

	return compact(body), nil
}

func compact(body []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return string(bytes.TrimSpace(body))
	}
	return buf.String()
}
