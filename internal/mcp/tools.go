package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/repolens/repolens/internal/chunker"
	"github.com/repolens/repolens/internal/ops"
	"github.com/repolens/repolens/internal/scanner"
)

// MCP error codes.
const (
	ErrorCodeInvalidParams = -32602
	ErrorCodeInternalError = -32603
	ErrorCodeNoSnapshot    = -32001
)

// Parameter validation errors.
var (
	ErrPathRequired    = errors.New("path parameter is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrNotDirectory    = errors.New("path is not a directory")
)

// MCPError carries a JSON-RPC error code through the framework.
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{Code: code, Message: message, Data: data}
}

// handleScanRepo handles the scan_repo tool invocation.
func (s *Server) handleScanRepo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	path, err := requirePath(args)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, err.Error(), map[string]interface{}{"param": "path"})
	}

	opts := scanner.Options{
		MaxFileBytes:   getIntDefault(args, "max_file_bytes", scanner.DefaultMaxFileBytes),
		FollowSymlinks: getBoolDefault(args, "follow_symlinks", false),
	}
	out, err := ops.Scan(ctx, path, opts)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "scan failed", map[string]interface{}{"error": err.Error()})
	}

	skipped := map[string]int{}
	for reason, n := range out.Stats.Skipped {
		skipped[string(reason)] = n
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"run_id":        out.RunID,
		"snapshot_path": out.SnapshotPath,
		"files":         out.Snapshot.Len(),
		"tokens":        out.Snapshot.TokenTotal(),
		"skipped":       skipped,
		"duration_ms":   out.Stats.Duration.Milliseconds(),
	})), nil
}

// handleDiffSnapshots handles the diff_snapshots tool invocation.
func (s *Server) handleDiffSnapshots(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	path, err := requirePath(args)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, err.Error(), map[string]interface{}{"param": "path"})
	}
	oldLabel, _ := args["old_label"].(string)

	res, label, err := ops.DiffAgainst(ctx, path, oldLabel)
	if err != nil {
		return nil, newMCPError(ErrorCodeNoSnapshot, "diff failed", map[string]interface{}{"error": err.Error()})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"old_label": label,
		"summary":   res.Summary,
		"added":     res.Added,
		"removed":   res.Removed,
		"modified":  res.Modified,
		"renamed":   res.Renamed,
	})), nil
}

// handlePackSnapshot handles the pack_snapshot tool invocation.
func (s *Server) handlePackSnapshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	path, err := requirePath(args)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, err.Error(), map[string]interface{}{"param": "path"})
	}

	budget := int(getIntDefault(args, "token_budget", ops.DefaultTokenBudget))
	if budget < 1 {
		return nil, newMCPError(ErrorCodeInvalidParams, "token_budget must be positive", map[string]interface{}{
			"param": "token_budget",
		})
	}

	out, err := ops.PackCurrent(ctx, path, budget)
	if err != nil {
		return nil, newMCPError(ErrorCodeNoSnapshot, "pack failed", map[string]interface{}{"error": err.Error()})
	}

	bundles := make([]map[string]interface{}, 0, len(out.Bundles))
	for i, b := range out.Bundles {
		bundles = append(bundles, map[string]interface{}{
			"index":  b.Index,
			"path":   out.BundlePaths[i],
			"files":  b.FileCount(),
			"tokens": b.TokenEstimate(),
			"parts":  len(b.Parts),
		})
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"bundle_count":     len(out.Bundles),
		"token_budget":     budget,
		"min_token_budget": chunker.MinTokenBudget,
		"bundles":          bundles,
	})), nil
}

// handleGetHistory handles the get_history tool invocation.
func (s *Server) handleGetHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	path, err := requirePath(args)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, err.Error(), map[string]interface{}{"param": "path"})
	}
	limit := int(getIntDefault(args, "limit", 20))
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
		})
	}

	hist, err := ops.GetHistory(ctx, path, limit)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "history lookup failed", map[string]interface{}{"error": err.Error()})
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"scans": hist.Scans,
		"diffs": hist.Diffs,
	})), nil
}

// requirePath extracts and validates the mandatory path argument.
func requirePath(args map[string]interface{}) (string, error) {
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return "", ErrPathRequired
	}
	if !filepath.IsAbs(path) {
		return "", ErrPathNotAbsolute
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return "", ErrPathNotFound
	}
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", ErrNotDirectory
	}
	return path, nil
}

// formatJSON formats a map as indented JSON.
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter; JSON numbers arrive as
// float64.
func getIntDefault(args map[string]interface{}, key string, defaultValue int64) int64 {
	switch v := args[key].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	default:
		return defaultValue
	}
}
