package diffengine

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/repolens/repolens/pkg/types"
)

// patchContextLines is the unified diff context used in snippet patches.
const patchContextLines = 3

// Report is the serialized form of a diff run, written next to archived
// snapshots so a change set can be reviewed without re-running the diff.
type Report struct {
	GeneratedAt time.Time        `json:"generated_at"`
	OldLabel    string           `json:"old_label"`
	NewLabel    string           `json:"new_label"`
	Result      types.DiffResult `json:"result"`
}

// AttachPatches fills the Patch field of each modified entry with a unified
// diff of the old and new snippets. Entries whose bytes did not change get
// no patch. Snapshots missing a path are tolerated; the patch is skipped.
func AttachPatches(res *types.DiffResult, oldSnap, newSnap *types.Snapshot) error {
	oldByPath, err := oldSnap.ByPath()
	if err != nil {
		return err
	}
	newByPath, err := newSnap.ByPath()
	if err != nil {
		return err
	}

	for i := range res.Modified {
		m := &res.Modified[i]
		if m.ReclassifiedOnly {
			continue
		}
		oldRec, okOld := oldByPath[m.Path]
		newRec, okNew := newByPath[m.Path]
		if !okOld || !okNew {
			continue
		}
		patch, err := snippetPatch(m.Path, oldRec.Snippet, newRec.Snippet)
		if err != nil {
			return fmt.Errorf("patch %s: %w", m.Path, err)
		}
		m.Patch = patch
	}
	return nil
}

func snippetPatch(path, before, after string) (string, error) {
	if before == after {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  patchContextLines,
	})
}

// WriteReport serializes the report as indented JSON via a temp file rename.
func WriteReport(path string, report *Report) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %s", types.ErrUnwritableDestination, dir)
	}
	tmp, err := os.CreateTemp(dir, ".report-*.json.tmp")
	if err != nil {
		return fmt.Errorf("%w: %s", types.ErrUnwritableDestination, dir)
	}
	tmpName := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpName)
	}()

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: %s", types.ErrUnwritableDestination, path)
	}
	return nil
}

// ReadReport loads a previously written diff report.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", path, err)
	}
	return &report, nil
}
