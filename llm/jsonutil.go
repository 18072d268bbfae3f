package llm

import (
	"regexp"
	"strings"
)

// Reasoning agents are asked for strictly parseable JSON but routinely wrap
// it in markdown fences, comment it, or leave trailing commas. The extractors
// below recover the JSON payload before strict parsing is attempted.

var (
	jsonBlockPattern      = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\{.*\\})\\s*```")
	jsonObjectPattern     = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
	jsonArrayBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\[.*\\])\\s*```")
	jsonArrayPattern      = regexp.MustCompile(`(?s)\[[\s\S]*\]`)
	trailingCommaPattern  = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSON extracts a JSON object from an LLM response string.
// It handles markdown code blocks, JavaScript-style comments, and trailing
// commas. Returns "" when no object is present.
func ExtractJSON(content string) string {
	var raw string
	if matches := jsonBlockPattern.FindStringSubmatch(content); len(matches) > 1 {
		raw = matches[1]
	} else {
		raw = jsonObjectPattern.FindString(content)
	}
	if raw == "" {
		return ""
	}
	return cleanJSON(raw)
}

// ExtractJSONArray extracts a JSON array from an LLM response string.
func ExtractJSONArray(content string) string {
	if matches := jsonArrayBlockPattern.FindStringSubmatch(content); len(matches) > 1 {
		return cleanJSON(matches[1])
	}
	if match := jsonArrayPattern.FindString(content); match != "" {
		return cleanJSON(match)
	}
	return ""
}

// cleanJSON removes JavaScript-style comments and trailing commas.
func cleanJSON(raw string) string {
	lines := strings.Split(raw, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, stripLineComment(line))
	}
	result := strings.Join(cleaned, "\n")

	return trailingCommaPattern.ReplaceAllString(result, "$1")
}

// stripLineComment removes a // comment from a JSON line, respecting string
// values so that URLs like "http://example.com" survive.
func stripLineComment(line string) string {
	if !strings.Contains(line, "//") {
		return line
	}

	inString := false
	escaped := false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if !inString && ch == '/' && i+1 < len(line) && line[i+1] == '/' {
			return strings.TrimRight(line[:i], " \t")
		}
	}
	return line
}
