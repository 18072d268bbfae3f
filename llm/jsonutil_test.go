package llm

import (
	"encoding/json"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "bare object",
			content: `{"action": "final"}`,
			want:    `{"action": "final"}`,
		},
		{
			name:    "fenced with language tag",
			content: "Here it is:\n```json\n{\"action\": \"tool\"}\n```\nDone.",
			want:    `{"action": "tool"}`,
		},
		{
			name:    "fenced without language tag",
			content: "```\n{\"a\": 1}\n```",
			want:    `{"a": 1}`,
		},
		{
			name:    "surrounded by prose",
			content: `Based on the evidence, my decision is {"action": "final", "recommendation": "approve"} as shown.`,
			want:    `{"action": "final", "recommendation": "approve"}`,
		},
		{
			name:    "trailing comma removed",
			content: `{"flags": ["a", "b",],}`,
			want:    `{"flags": ["a", "b"]}`,
		},
		{
			name:    "line comment stripped",
			content: "{\n\"score\": 80 // out of 100\n}",
			want:    "{\n\"score\": 80\n}",
		},
		{
			name:    "url inside string survives",
			content: `{"portal": "https://bank.example.com/statements"}`,
			want:    `{"portal": "https://bank.example.com/statements"}`,
		},
		{
			name:    "no object",
			content: "I need to think about this more.",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSON(tt.content)
			if got != tt.want {
				t.Errorf("ExtractJSON() = %q, want %q", got, tt.want)
			}
			if tt.want != "" && !json.Valid([]byte(got)) {
				t.Errorf("extracted JSON is not valid: %q", got)
			}
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "bare array",
			content: `["q1", "q2"]`,
			want:    `["q1", "q2"]`,
		},
		{
			name:    "fenced array",
			content: "```json\n[\"q1\"]\n```",
			want:    `["q1"]`,
		},
		{
			name:    "array in prose",
			content: `Here are the questions: ["q1", "q2", "q3"] Let me know.`,
			want:    `["q1", "q2", "q3"]`,
		},
		{
			name:    "trailing comma",
			content: `["q1", "q2",]`,
			want:    `["q1", "q2"]`,
		},
		{
			name:    "no array",
			content: "I would ask about the deposits.",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSONArray(tt.content)
			if got != tt.want {
				t.Errorf("ExtractJSONArray() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStripLineComment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"key": "value" // note`, `"key": "value"`},
		{`"url": "http://x.test/a"`, `"url": "http://x.test/a"`},
		{`"esc": "a\"b // not a comment"`, `"esc": "a\"b // not a comment"`},
		{`no comment here`, `no comment here`},
	}
	for _, tt := range tests {
		if got := stripLineComment(tt.in); got != tt.want {
			t.Errorf("stripLineComment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
