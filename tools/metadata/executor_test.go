package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/docsentinel/document"
	"github.com/c360studio/docsentinel/tools"
)

func pngDoc(t *testing.T) document.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return document.New(buf.Bytes(), "statement.png", document.TypeBankStatement)
}

func TestExecuteReturnsSignalBundle(t *testing.T) {
	exec := NewExecutor(pngDoc(t))

	result, err := exec.Execute(context.Background(), tools.ToolCall{ID: "c1", Name: ToolName})
	require.NoError(t, err)
	assert.False(t, result.Failed())

	var bundle struct {
		RedFlags        []string       `json:"red_flags"`
		PositiveSignals []string       `json:"positive_signals"`
		Metadata        map[string]any `json:"raw_metadata"`
	}
	require.NoError(t, json.Unmarshal([]byte(result.Content), &bundle))
	assert.Contains(t, bundle.RedFlags, "Document submitted as image rather than original PDF")
	assert.NotNil(t, bundle.Metadata)
}

func TestExecuteRejectsUnknownTool(t *testing.T) {
	exec := NewExecutor(pngDoc(t))

	result, err := exec.Execute(context.Background(), tools.ToolCall{ID: "c2", Name: "other"})
	require.Error(t, err)
	assert.True(t, result.Failed())
}

func TestExecuteHonorsCancellation(t *testing.T) {
	exec := NewExecutor(pngDoc(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := exec.Execute(ctx, tools.ToolCall{ID: "c3", Name: ToolName})
	require.Error(t, err)
	assert.True(t, result.Failed())
}

func TestListTools(t *testing.T) {
	defs := NewExecutor(pngDoc(t)).ListTools()
	require.Len(t, defs, 1)
	assert.Equal(t, ToolName, defs[0].Name)
	assert.NotEmpty(t, defs[0].Description)
}
