package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/repolens/repolens/internal/mcp"
	"github.com/repolens/repolens/internal/ops"
	"github.com/repolens/repolens/internal/scanner"
	"github.com/repolens/repolens/internal/storage"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp() *cli.App {
	app := &cli.App{
		Name:    "repolens",
		Usage:   "Repository inventory, diff, and context packing",
		Version: Version,
		Commands: []*cli.Command{
			scanCmd(),
			rescanCmd(),
			diffCmd(),
			packCmd(),
			treeCmd(),
			catalogCmd(),
			historyCmd(),
			serveCmd(),
			versionCmd(),
		},
	}
	// Let errors surface to the caller instead of exiting mid-test.
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func rootFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "root",
		Aliases: []string{"r"},
		Value:   ".",
		Usage:   "Repository root to operate on",
	}
}

func scanFlags() []cli.Flag {
	return []cli.Flag{
		rootFlag(),
		&cli.Int64Flag{
			Name:  "max-file-bytes",
			Value: scanner.DefaultMaxFileBytes,
			Usage: "Per-file content cap in bytes",
		},
		&cli.BoolFlag{
			Name:  "follow-symlinks",
			Usage: "Follow symlinked files and directories",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Worker pool size (default: CPU count)",
		},
	}
}

func scanOptions(c *cli.Context) scanner.Options {
	return scanner.Options{
		MaxFileBytes:   c.Int64("max-file-bytes"),
		FollowSymlinks: c.Bool("follow-symlinks"),
		Workers:        c.Int("workers"),
	}
}

func resolveRoot(c *cli.Context) (string, error) {
	root, err := filepath.Abs(c.String("root"))
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}
	return root, nil
}

func scanCmd() *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "Scan the repository into the current snapshot",
		Flags: scanFlags(),
		Action: func(c *cli.Context) error {
			root, err := resolveRoot(c)
			if err != nil {
				return err
			}
			out, err := ops.Scan(c.Context, root, scanOptions(c))
			if err != nil {
				return err
			}
			return outputJSON(map[string]interface{}{
				"run_id":        out.RunID,
				"snapshot_path": out.SnapshotPath,
				"files":         out.Snapshot.Len(),
				"tokens":        out.Snapshot.TokenTotal(),
				"skipped":       out.Stats.Skipped,
				"duration_ms":   out.Stats.Duration.Milliseconds(),
			})
		},
	}
}

func rescanCmd() *cli.Command {
	return &cli.Command{
		Name:  "rescan",
		Usage: "Archive the current snapshot, scan again, and diff the two",
		Flags: scanFlags(),
		Action: func(c *cli.Context) error {
			root, err := resolveRoot(c)
			if err != nil {
				return err
			}
			out, err := ops.Rescan(c.Context, root, scanOptions(c))
			if err != nil {
				return err
			}
			resp := map[string]interface{}{
				"run_id": out.Scan.RunID,
				"files":  out.Scan.Snapshot.Len(),
				"tokens": out.Scan.Snapshot.TokenTotal(),
			}
			if out.Diff != nil {
				resp["archived_label"] = out.ArchiveLabel
				resp["diff_summary"] = out.Diff.Summary
				resp["report_path"] = out.ReportPath
			} else {
				resp["first_scan"] = true
			}
			return outputJSON(resp)
		},
	}
}

func diffCmd() *cli.Command {
	return &cli.Command{
		Name:  "diff",
		Usage: "Diff an archived snapshot against the current one",
		Flags: []cli.Flag{
			rootFlag(),
			&cli.StringFlag{
				Name:  "old-label",
				Usage: "Archive label to diff against (default: most recent)",
			},
			&cli.BoolFlag{
				Name:  "summary-only",
				Usage: "Print only the summary counts",
			},
		},
		Action: func(c *cli.Context) error {
			root, err := resolveRoot(c)
			if err != nil {
				return err
			}
			res, label, err := ops.DiffAgainst(c.Context, root, c.String("old-label"))
			if err != nil {
				return err
			}
			if c.Bool("summary-only") {
				return outputJSON(map[string]interface{}{
					"old_label": label,
					"summary":   res.Summary,
				})
			}
			return outputJSON(map[string]interface{}{
				"old_label": label,
				"summary":   res.Summary,
				"added":     res.Added,
				"removed":   res.Removed,
				"modified":  res.Modified,
				"renamed":   res.Renamed,
			})
		},
	}
}

func packCmd() *cli.Command {
	return &cli.Command{
		Name:  "pack",
		Usage: "Pack the current snapshot into token-budgeted bundles",
		Flags: []cli.Flag{
			rootFlag(),
			&cli.IntFlag{
				Name:    "token-budget",
				Aliases: []string{"t"},
				Value:   ops.DefaultTokenBudget,
				Usage:   "Token budget per bundle (floor 256)",
			},
		},
		Action: func(c *cli.Context) error {
			root, err := resolveRoot(c)
			if err != nil {
				return err
			}
			out, err := ops.PackCurrent(c.Context, root, c.Int("token-budget"))
			if err != nil {
				return err
			}
			bundles := make([]map[string]interface{}, 0, len(out.Bundles))
			for i, b := range out.Bundles {
				bundles = append(bundles, map[string]interface{}{
					"index":  b.Index,
					"path":   out.BundlePaths[i],
					"files":  b.FileCount(),
					"tokens": b.TokenEstimate(),
				})
			}
			return outputJSON(map[string]interface{}{
				"bundle_count": len(out.Bundles),
				"bundles":      bundles,
			})
		},
	}
}

func treeCmd() *cli.Command {
	return &cli.Command{
		Name:  "tree",
		Usage: "Render the tree, catalog, and declarations views",
		Flags: []cli.Flag{rootFlag()},
		Action: func(c *cli.Context) error {
			root, err := resolveRoot(c)
			if err != nil {
				return err
			}
			written, err := ops.WriteViews(root)
			if err != nil {
				return err
			}
			return outputJSON(map[string]interface{}{"views": written})
		},
	}
}

func catalogCmd() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Alias for tree; renders all views",
		Flags: []cli.Flag{rootFlag()},
		Action: func(c *cli.Context) error {
			root, err := resolveRoot(c)
			if err != nil {
				return err
			}
			written, err := ops.WriteViews(root)
			if err != nil {
				return err
			}
			return outputJSON(map[string]interface{}{"views": written})
		},
	}
}

func historyCmd() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded scan and diff runs",
		Flags: []cli.Flag{
			rootFlag(),
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Value:   20,
				Usage:   "Maximum runs per list",
			},
		},
		Action: func(c *cli.Context) error {
			root, err := resolveRoot(c)
			if err != nil {
				return err
			}
			hist, err := ops.GetHistory(c.Context, root, c.Int("limit"))
			if err != nil {
				return err
			}
			return outputJSON(map[string]interface{}{
				"scans": hist.Scans,
				"diffs": hist.Diffs,
			})
		},
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the MCP server on stdio",
		Action: func(c *cli.Context) error {
			return mcp.NewServer().Serve(c.Context)
		},
	}
}

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version and build information",
		Action: func(c *cli.Context) error {
			return outputJSON(map[string]interface{}{
				"version":       Version,
				"sqlite_driver": storage.DriverName,
				"build_mode":    storage.BuildMode,
			})
		},
	}
}

// outputJSON writes indented JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
