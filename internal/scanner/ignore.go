package scanner

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// denyDirs are never descended into regardless of ignore files. They are
// either VCS metadata or build output that would swamp an inventory.
var denyDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	".repolens":    {},
	"node_modules": {},
	"target":       {},
	"vendor":       {},
	"dist":         {},
	"build":        {},
	"__pycache__":  {},
	".venv":        {},
	".idea":        {},
	".vscode":      {},
	".terraform":   {},
}

// noiseTopDirs mark records as low-signal when they live under these
// top-level directories; views use the flag to de-emphasize them.
var noiseTopDirs = map[string]struct{}{
	"testdata":    {},
	"examples":    {},
	"fixtures":    {},
	"scripts":     {},
	".github":     {},
	"third_party": {},
}

// IsNoisePath reports whether a repo-relative path should carry the noise
// flag in its record.
func IsNoisePath(rel string) bool {
	top := rel
	if i := strings.IndexByte(top, '/'); i > 0 {
		top = top[:i]
	}
	_, ok := noiseTopDirs[strings.ToLower(top)]
	return ok
}

// ignoreRule is one compiled line from an ignore file. The semantics follow
// gitignore: '!' negates, trailing '/' restricts to directories, leading '/'
// anchors to the root, '**' crosses directories, '*' and '?' do not.
type ignoreRule struct {
	neg     bool
	dirOnly bool
	rx      *regexp.Regexp
}

// ignoreSet is the merged rule list for a scan root. Later rules win, and
// .lensignore rules are appended after .gitignore so tool-specific excludes
// can override repo ones.
type ignoreSet struct {
	rules []ignoreRule
}

// loadIgnoreSet reads root/.gitignore and root/.lensignore. Missing files
// are fine; unreadable ones are treated as missing.
func loadIgnoreSet(root string) *ignoreSet {
	set := &ignoreSet{}
	for _, name := range []string{".gitignore", ".lensignore"} {
		rules, err := parseIgnoreFile(filepath.Join(root, name))
		if err != nil {
			continue
		}
		set.rules = append(set.rules, rules...)
	}
	return set
}

// Match reports whether the repo-relative path is excluded. The whole rule
// list is evaluated so a later negation can rescue an earlier exclusion.
func (s *ignoreSet) Match(rel string, isDir bool) bool {
	ignored := false
	for _, r := range s.rules {
		if !r.rx.MatchString(rel) {
			continue
		}
		if r.dirOnly && !isDir {
			continue
		}
		ignored = !r.neg
	}
	return ignored
}

func parseIgnoreFile(path string) ([]ignoreRule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rules []ignoreRule
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		neg := false
		if strings.HasPrefix(line, "!") {
			neg = true
			line = strings.TrimSpace(line[1:])
			if line == "" {
				continue
			}
		}
		dirOnly := strings.HasSuffix(line, "/")
		if dirOnly {
			line = strings.TrimSuffix(line, "/")
		}
		anchored := strings.HasPrefix(line, "/")
		if anchored {
			line = strings.TrimPrefix(line, "/")
		}
		rules = append(rules, ignoreRule{
			neg:     neg,
			dirOnly: dirOnly,
			rx:      compileIgnoreGlob(line, anchored),
		})
	}
	return rules, sc.Err()
}

// compileIgnoreGlob translates one gitignore glob into a regexp over
// slash-separated relative paths.
func compileIgnoreGlob(glob string, anchored bool) *regexp.Regexp {
	esc := regexp.QuoteMeta(glob)
	esc = strings.ReplaceAll(esc, `\*\*`, "\x00")
	esc = strings.ReplaceAll(esc, `\*`, "[^/]*")
	esc = strings.ReplaceAll(esc, `\?`, "[^/]")
	esc = strings.ReplaceAll(esc, "\x00", ".*")

	var pattern string
	if anchored {
		pattern = "^" + esc + "(/.*)?$"
	} else {
		pattern = "(^|.*/)" + esc + "(/.*)?$"
	}
	return regexp.MustCompile(pattern)
}
