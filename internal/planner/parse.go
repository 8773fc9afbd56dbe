package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Stage identifies which parse path produced an error.
type Stage string

const (
	StageDraft      Stage = "draft"
	StageElaborate  Stage = "elaborate"
	StageSingleShot Stage = "single_shot"
)

// ParseError reports malformed or schema-incomplete JSON from a backend. It
// is a tagged result consumed by stage-transition logic: the draft and
// single-shot stages fail over on it, the elaboration stage substitutes a
// deterministic task for the one item.
type ParseError struct {
	Stage Stage
	Err   error
}

// NewParseError tags err with the stage it occurred in.
func NewParseError(stage Stage, err error) *ParseError {
	return &ParseError{Stage: stage, Err: err}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s parse: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// requiredFields are the six keys every single-shot task object must carry.
var requiredFields = []string{"task_name", "description", "duration", "dependencies", "phase", "priority"}

// ParseDraft extracts ordered task names from a draft response. Non-object
// array entries are discarded; objects with a missing or empty task_name
// contribute nothing. Duplicate names are preserved: accidental repeats are
// user-visible signal of backend behavior, not noise to collapse.
func ParseDraft(raw string) ([]string, error) {
	payload, ok := extractJSONValue(raw, '[')
	if !ok {
		return nil, NewParseError(StageDraft, errors.New("response is not a JSON array"))
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(payload), &elems); err != nil {
		return nil, NewParseError(StageDraft, err)
	}

	names := make([]string, 0, len(elems))
	for _, elem := range elems {
		var stub struct {
			TaskName string `json:"task_name"`
		}
		if err := json.Unmarshal(elem, &stub); err != nil {
			continue
		}
		if stub.TaskName == "" {
			continue
		}
		names = append(names, stub.TaskName)
	}

	if len(names) == 0 {
		return nil, NewParseError(StageDraft, errors.New("no task names in draft response"))
	}
	return names, nil
}

// ParseElaboration builds a full breakdown for taskName from an elaboration
// response. Individual missing or blank fields get deterministic defaults;
// only an unparseable response is an error.
func ParseElaboration(raw, taskName string) (TaskBreakdown, error) {
	payload, ok := extractJSONValue(raw, '{')
	if !ok {
		return TaskBreakdown{}, NewParseError(StageElaborate, errors.New("response is not a JSON object"))
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return TaskBreakdown{}, NewParseError(StageElaborate, err)
	}

	return TaskBreakdown{
		TaskName:     taskName,
		Description:  stringField(fields, "description", "Detailed work for "+taskName),
		Duration:     stringField(fields, "duration", "2 days"),
		Dependencies: stringField(fields, "dependencies", "None"),
		Phase:        stringField(fields, "phase", "Planning"),
		Priority:     stringField(fields, "priority", "medium"),
	}, nil
}

// ParseSingleShot extracts fully-specified breakdowns from a single-shot
// response. Elements missing any required field are dropped, not defaulted;
// the dropped count is returned so the caller can log the loss. An empty
// result with no drops still parses successfully.
func ParseSingleShot(raw string) ([]TaskBreakdown, int, error) {
	payload, ok := extractJSONValue(raw, '[')
	if !ok {
		return nil, 0, NewParseError(StageSingleShot, errors.New("response is not a JSON array"))
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(payload), &elems); err != nil {
		return nil, 0, NewParseError(StageSingleShot, err)
	}

	tasks := make([]TaskBreakdown, 0, len(elems))
	dropped := 0
	for _, elem := range elems {
		var fields map[string]any
		if err := json.Unmarshal(elem, &fields); err != nil {
			dropped++
			continue
		}

		complete := true
		for _, key := range requiredFields {
			if _, present := fields[key]; !present {
				complete = false
				break
			}
		}
		if !complete {
			dropped++
			continue
		}

		tasks = append(tasks, TaskBreakdown{
			TaskName:     asString(fields["task_name"]),
			Description:  asString(fields["description"]),
			Duration:     asString(fields["duration"]),
			Dependencies: asString(fields["dependencies"]),
			Phase:        asString(fields["phase"]),
			Priority:     asString(fields["priority"]),
		})
	}

	return tasks, dropped, nil
}

// stringField returns the trimmed string at key, or def when the key is
// absent, blank, or not a string-like value.
func stringField(fields map[string]any, key, def string) string {
	v, ok := fields[key]
	if !ok {
		return def
	}
	s := asString(v)
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// asString renders a decoded JSON value as a string. Backends occasionally
// emit numbers for duration-like fields; those are kept rather than dropped.
func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	case nil:
		return ""
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// extractJSONValue finds the first complete JSON value opening with want
// ('[' or '{') in s, tolerating surrounding prose. The gateway already
// strips code fences; this guards against preambles like "Here is the
// plan:" that survive fence stripping.
func extractJSONValue(s string, want byte) (string, bool) {
	start := strings.IndexByte(s, want)
	if start < 0 {
		return "", false
	}
	candidate := matchBrackets(s[start:])
	if candidate == "" || !json.Valid([]byte(candidate)) {
		return "", false
	}
	return candidate, true
}

// matchBrackets returns the prefix of s that forms one balanced JSON value,
// tracking string literals and escapes so brackets inside strings do not
// count.
func matchBrackets(s string) string {
	if len(s) == 0 {
		return ""
	}

	open := s[0]
	var closing byte
	switch open {
	case '[':
		closing = ']'
	case '{':
		closing = '}'
	default:
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}

	return ""
}
