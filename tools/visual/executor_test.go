package visual

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/docsentinel/document"
	"github.com/c360studio/docsentinel/llm"
	"github.com/c360studio/docsentinel/llm/testutil"
	"github.com/c360studio/docsentinel/tools"
)

var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

func TestExecuteSendsVisionRequest(t *testing.T) {
	mock := &testutil.MockCompleter{
		Responses: []*llm.Response{{Content: "fonts are consistent", Model: "test-model"}},
	}
	doc := document.New(jpegBytes, "statement.jpg", document.TypeBankStatement)
	exec := NewExecutor(doc, mock)

	result, err := exec.Execute(context.Background(), tools.ToolCall{ID: "c1", Name: ToolName})
	require.NoError(t, err)
	assert.False(t, result.Failed())
	assert.Equal(t, "fonts are consistent", result.Content)

	req := mock.LastRequest()
	require.NotNil(t, req)
	assert.Equal(t, "vision", req.Capability)
	require.Len(t, req.Messages, 1)
	assert.Contains(t, req.Messages[0].Content, "Visual Consistency")
	assert.Contains(t, req.Messages[0].Content, "bank statement")
	require.Len(t, req.Messages[0].Images, 1)
	assert.True(t, strings.HasPrefix(req.Messages[0].Images[0], "data:image/jpeg;base64,"))
}

func TestExecutePNGMediaType(t *testing.T) {
	mock := &testutil.MockCompleter{
		Responses: []*llm.Response{{Content: "ok", Model: "test-model"}},
	}
	doc := document.New([]byte{0x89, 'P', 'N', 'G'}, "statement.PNG", document.TypeBankStatement)
	exec := NewExecutor(doc, mock)

	_, err := exec.Execute(context.Background(), tools.ToolCall{ID: "c2", Name: ToolName})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(mock.LastRequest().Messages[0].Images[0], "data:image/png;base64,"))
}

func TestExecutePDFShortCircuits(t *testing.T) {
	mock := &testutil.MockCompleter{}
	doc := document.New([]byte("%PDF-1.4"), "statement.pdf", document.TypeBankStatement)
	exec := NewExecutor(doc, mock)

	result, err := exec.Execute(context.Background(), tools.ToolCall{ID: "c3", Name: ToolName})
	require.NoError(t, err)
	assert.False(t, result.Failed())
	assert.Contains(t, result.Content, "conversion to image")
	assert.Equal(t, 0, mock.CallCount())
}

func TestExecuteModelFaultBecomesErrorResult(t *testing.T) {
	mock := &testutil.MockCompleter{Err: errors.New("endpoint down")}
	doc := document.New(jpegBytes, "statement.jpg", document.TypeBankStatement)
	exec := NewExecutor(doc, mock)

	result, err := exec.Execute(context.Background(), tools.ToolCall{ID: "c4", Name: ToolName})
	require.NoError(t, err)
	assert.True(t, result.Failed())
	assert.Contains(t, result.Error, "Error during visual inspection")
}

func TestExecuteRejectsUnknownTool(t *testing.T) {
	doc := document.New(jpegBytes, "statement.jpg", document.TypeBankStatement)
	exec := NewExecutor(doc, &testutil.MockCompleter{})

	_, err := exec.Execute(context.Background(), tools.ToolCall{ID: "c5", Name: "other"})
	require.Error(t, err)
}
