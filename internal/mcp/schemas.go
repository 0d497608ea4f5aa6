package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// scanRepoTool returns the tool definition for scan_repo.
func scanRepoTool() mcp.Tool {
	return mcp.Tool{
		Name:        "scan_repo",
		Description: "Scan a repository into a canonical snapshot of file records",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the repository root",
				},
				"max_file_bytes": map[string]interface{}{
					"type":        "integer",
					"description": "Per-file content cap in bytes",
					"default":     512000,
				},
				"follow_symlinks": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, follow symlinked files and directories",
					"default":     false,
				},
			},
			Required: []string{"path"},
		},
	}
}

// diffSnapshotsTool returns the tool definition for diff_snapshots.
func diffSnapshotsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "diff_snapshots",
		Description: "Classify path changes between an archived snapshot and the current one",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the repository root",
				},
				"old_label": map[string]interface{}{
					"type":        "string",
					"description": "Archive label to diff against; defaults to the most recent archive",
				},
			},
			Required: []string{"path"},
		},
	}
}

// packSnapshotTool returns the tool definition for pack_snapshot.
func packSnapshotTool() mcp.Tool {
	return mcp.Tool{
		Name:        "pack_snapshot",
		Description: "Pack the current snapshot into token-budgeted markdown bundles",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the repository root",
				},
				"token_budget": map[string]interface{}{
					"type":        "integer",
					"description": "Token budget per bundle (floor 256)",
					"default":     8000,
					"minimum":     1,
				},
			},
			Required: []string{"path"},
		},
	}
}

// getHistoryTool returns the tool definition for get_history.
func getHistoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_history",
		Description: "List recorded scan and diff runs for a repository",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the repository root",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of runs per list (1-100)",
					"default":     20,
					"minimum":     1,
					"maximum":     100,
				},
			},
			Required: []string{"path"},
		},
	}
}
