package extractor

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"lecture-insights-go/internal/apperr"
	"lecture-insights-go/internal/types"
)

const (
	defaultScore     = 50
	defaultReasoning = "unable to generate score"
	fallbackReason   = "Score extracted from response"
)

var firstInteger = regexp.MustCompile(`\b\d+\b`)

// ParseScore decodes a scoring reply. The returned Score is always usable and
// clamped to 0-100; a non-nil error is a *apperr.ParseError reporting that a
// fallback was taken.
func ParseScore(raw string) (types.Score, error) {
	body := stripFences(raw)

	var payload struct {
		Score     *float64 `json:"score"`
		Reasoning string   `json:"reasoning"`
	}
	err := decodeObject(body, &payload)
	if err == nil && payload.Score == nil {
		err = errors.New("score field missing")
	}
	if err == nil {
		return types.Score{
			Score:     int(math.Round(min(max(*payload.Score, 0), 100))),
			Reasoning: strings.TrimSpace(payload.Reasoning),
		}, nil
	}

	perr := &apperr.ParseError{Payload: "score", Err: err}
	if m := firstInteger.FindString(body); m != "" {
		if n, convErr := strconv.Atoi(m); convErr == nil {
			return types.Score{Score: types.ClampScore(n), Reasoning: fallbackReason}, perr
		}
		// more digits than an int holds
		return types.Score{Score: 100, Reasoning: fallbackReason}, perr
	}
	return types.Score{Score: defaultScore, Reasoning: defaultReasoning}, perr
}

// ParseExtendedMetrics decodes and clamps a metrics reply. There is no
// fallback: callers drop the metrics on error.
func ParseExtendedMetrics(raw string) (types.ExtendedMetrics, error) {
	var m types.ExtendedMetrics
	if err := decodeObject(stripFences(raw), &m); err != nil {
		return types.ExtendedMetrics{}, &apperr.ParseError{Payload: "extended_metrics", Err: err}
	}
	return m.Clamp(), nil
}

// stripFences removes a surrounding markdown code fence, keeping only the
// first fenced block when one is present.
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if i := strings.Index(s, "```"); i >= 0 {
		rest := s[i+3:]
		// drop a language tag such as ```json
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 && !strings.ContainsAny(rest[:nl], "{[\"") {
			rest = rest[nl+1:]
		} else {
			rest = strings.TrimPrefix(rest, "json")
		}
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		s = rest
	}
	return strings.TrimSpace(s)
}

// decodeObject unmarshals s, or failing that the first balanced JSON object
// found inside it.
func decodeObject(s string, v any) error {
	err := json.Unmarshal([]byte(s), v)
	if err == nil {
		return nil
	}
	if obj := extractJSON(s); obj != "" && obj != s {
		if err2 := json.Unmarshal([]byte(obj), v); err2 == nil {
			return nil
		}
	}
	return err
}

// extractJSON finds the first balanced JSON object in a string and returns it.
// Braces inside string literals are ignored.
func extractJSON(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
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
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[start : i+1])
			}
		}
	}
	return ""
}
