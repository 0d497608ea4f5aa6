package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callReq(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func seedRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"),
		[]byte("package main\n\nfunc main() {}\n"), 0644))
	return root
}

func TestToolSchemas(t *testing.T) {
	for _, tool := range []mcp.Tool{scanRepoTool(), diffSnapshotsTool(), packSnapshotTool(), getHistoryTool()} {
		assert.NotEmpty(t, tool.Name)
		assert.NotEmpty(t, tool.Description)
		assert.Contains(t, tool.InputSchema.Required, "path")
		assert.Contains(t, tool.InputSchema.Properties, "path")
	}
}

func TestHandleScanRepo(t *testing.T) {
	s := NewServer()
	root := seedRepo(t)

	res, err := s.handleScanRepo(context.Background(), callReq(map[string]interface{}{
		"path": root,
	}))
	require.NoError(t, err)
	require.NotNil(t, res)

	text := resultText(t, res)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text), &payload))
	assert.Equal(t, float64(1), payload["files"])
	assert.NotEmpty(t, payload["run_id"])
}

func TestHandleScanRepoValidation(t *testing.T) {
	s := NewServer()
	ctx := context.Background()

	_, err := s.handleScanRepo(ctx, callReq(map[string]interface{}{}))
	require.Error(t, err)
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)

	_, err = s.handleScanRepo(ctx, callReq(map[string]interface{}{"path": "relative/path"}))
	require.ErrorAs(t, err, &mcpErr)

	_, err = s.handleScanRepo(ctx, callReq(map[string]interface{}{
		"path": filepath.Join(t.TempDir(), "missing"),
	}))
	require.ErrorAs(t, err, &mcpErr)
}

func TestHandlePackWithoutSnapshot(t *testing.T) {
	s := NewServer()
	root := seedRepo(t)

	_, err := s.handlePackSnapshot(context.Background(), callReq(map[string]interface{}{
		"path": root,
	}))
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeNoSnapshot, mcpErr.Code)
}

func TestHandleScanThenPackAndHistory(t *testing.T) {
	s := NewServer()
	root := seedRepo(t)
	ctx := context.Background()

	_, err := s.handleScanRepo(ctx, callReq(map[string]interface{}{"path": root}))
	require.NoError(t, err)

	res, err := s.handlePackSnapshot(ctx, callReq(map[string]interface{}{
		"path":         root,
		"token_budget": float64(512),
	}))
	require.NoError(t, err)
	var packPayload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &packPayload))
	assert.GreaterOrEqual(t, packPayload["bundle_count"], float64(1))

	res, err = s.handleGetHistory(ctx, callReq(map[string]interface{}{"path": root}))
	require.NoError(t, err)
	var histPayload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &histPayload))
	scans, ok := histPayload["scans"].([]interface{})
	require.True(t, ok)
	assert.Len(t, scans, 1)
}

func TestGetIntDefault(t *testing.T) {
	args := map[string]interface{}{"n": float64(7)}
	assert.Equal(t, int64(7), getIntDefault(args, "n", 3))
	assert.Equal(t, int64(3), getIntDefault(args, "missing", 3))
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}
