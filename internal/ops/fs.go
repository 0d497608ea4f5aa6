package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/repolens/repolens/internal/workspace"
	"github.com/repolens/repolens/pkg/types"
)

// latestArchiveLabel finds the newest archived snapshot label; labels sort
// lexicographically by construction.
func latestArchiveLabel(paths workspace.Paths) (string, error) {
	entries, err := os.ReadDir(paths.HistFull)
	if err != nil {
		return "", fmt.Errorf("%w: no archives under %s", types.ErrSnapshotNotFound, paths.HistFull)
	}
	var labels []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		labels = append(labels, strings.TrimSuffix(e.Name(), ".jsonl"))
	}
	if len(labels) == 0 {
		return "", fmt.Errorf("%w: no archives under %s", types.ErrSnapshotNotFound, paths.HistFull)
	}
	sort.Strings(labels)
	return labels[len(labels)-1], nil
}

func writeText(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: %s", types.ErrUnwritableDestination, filepath.Dir(path))
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("%w: %s", types.ErrUnwritableDestination, path)
	}
	return nil
}
