package main

import (
	"errors"
	"testing"

	"github.com/c360studio/docsentinel/agent"
	"github.com/c360studio/docsentinel/audit"
	"github.com/c360studio/docsentinel/document"
)

func TestParseDocType(t *testing.T) {
	tests := []struct {
		in   string
		want document.Type
	}{
		{"bank_statement", document.TypeBankStatement},
		{"tax_return", document.TypeTaxReturn},
		{"pay_stub", document.TypePayStub},
		{"investment_statement", document.TypeInvestmentStatement},
		{"other", document.TypeOther},
		{"unrecognized", document.TypeOther},
	}

	for _, tt := range tests {
		if got := parseDocType(tt.in); got != tt.want {
			t.Errorf("parseDocType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUploadAuditEvent(t *testing.T) {
	doc := document.New([]byte("payload"), "statement.pdf", document.TypeBankStatement)

	ev := uploadAuditEvent(doc, "sess-1")
	if ev.EventType != audit.EventDocumentUpload {
		t.Errorf("event type = %q", ev.EventType)
	}
	if ev.Metadata["file_size"] != len(doc.Data) {
		t.Errorf("file_size = %v, want %d", ev.Metadata["file_size"], len(doc.Data))
	}
	if ev.Metadata["session"] != "sess-1" {
		t.Errorf("session = %v", ev.Metadata["session"])
	}
}

func TestAnalysisAuditEvent(t *testing.T) {
	doc := document.New([]byte("payload"), "statement.pdf", document.TypeBankStatement)
	verdict := &agent.Verdict{Recommendation: agent.RecommendationReview, Narrative: "looks consistent"}

	ev := analysisAuditEvent(doc, "sess-1", verdict, nil)
	if ev.Metadata["success"] != true {
		t.Errorf("success = %v, want true", ev.Metadata["success"])
	}
	if ev.Metadata["result_length"] != len(verdict.Narrative) {
		t.Errorf("result_length = %v, want %d", ev.Metadata["result_length"], len(verdict.Narrative))
	}
	if ev.Metadata["recommendation"] != "review" {
		t.Errorf("recommendation = %v", ev.Metadata["recommendation"])
	}

	failed := analysisAuditEvent(doc, "sess-1", nil, errors.New("model unavailable"))
	if failed.Metadata["success"] != false {
		t.Errorf("success = %v, want false", failed.Metadata["success"])
	}
	if failed.Metadata["error"] != "model unavailable" {
		t.Errorf("error = %v", failed.Metadata["error"])
	}
	if _, ok := failed.Metadata["result_length"]; ok {
		t.Error("result_length should be absent without a verdict")
	}
}

func TestRootCommandWiring(t *testing.T) {
	cmd := rootCmd()

	want := map[string]bool{"analyze": false, "inspect": false, "sweep": false, "version": false}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}
