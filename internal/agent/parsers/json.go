package parsers

import (
	"encoding/json"
	"fmt"
	"strings"

	errx "github.com/northstar-insurance/server/internal/core/error"
	logx "github.com/northstar-insurance/server/pkg/logger"
)

// basic safety limits to avoid pathological inputs
const (
	maxContentLen = 128 * 1024 // 128KB
	maxErrSnippet = 200
)

// ExtractJSONObject recovers a JSON object from raw model output. Models
// routinely wrap the object in prose or markdown fences, so after a direct
// parse fails the text is scanned for balanced {...} spans with a
// string-and-escape aware depth counter and each candidate is parsed in
// order. Nothing is ever fabricated: if no span parses, the error wraps
// errx.ErrMalformedOutput.
func ExtractJSONObject(content string) (map[string]any, error) {
	if len(content) > maxContentLen {
		logx.Warn().
			Str("component", "json_parser").
			Int("max_len", maxContentLen).
			Int("orig_len", len(content)).
			Msg("content truncated due to size limit")
		content = content[:maxContentLen]
	}

	trimmed := strings.TrimSpace(content)
	if obj, ok := tryParseObject(trimmed); ok {
		return obj, nil
	}

	for _, span := range balancedSpans(content) {
		if obj, ok := tryParseObject(span); ok {
			return obj, nil
		}
	}

	logx.Warn().
		Str("component", "json_parser").
		Str("snippet", safeSnippet(content)).
		Msg("no parseable JSON object in model output")
	return nil, fmt.Errorf("%w: no JSON object found", errx.ErrMalformedOutput)
}

func tryParseObject(s string) (map[string]any, bool) {
	if s == "" || s[0] != '{' {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// balancedSpans returns every top-level {...} span in order of appearance.
// The walk tracks JSON string state so braces inside string values do not
// distort the depth count.
func balancedSpans(s string) []string {
	var spans []string
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					spans = append(spans, s[start:i+1])
					start = -1
				}
			}
		}
	}
	return spans
}

func safeSnippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrSnippet {
		return s
	}
	return s[:maxErrSnippet]
}
