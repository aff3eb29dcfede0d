// Package ignore composes .hashignore files along a directory's
// ancestor chain into a single gitignore-style matcher, including
// negation and directory-only restrictions.
package ignore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/hashtree/hashtree/pkg/herrors"
)

// FileName is the default ignore-file name hashtree looks for.
const FileName = ".hashignore"

// pattern is one compiled line from an ignore file. An unanchored
// pattern with no internal separator compiles to two globs, one for the
// ignore file's own directory and one for every level below it.
type pattern struct {
	raw     string
	negate  bool
	dirOnly bool
	globs   []glob.Glob
}

func (p pattern) matches(rel string) bool {
	for _, g := range p.globs {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// ignoreFile holds the compiled patterns from one .hashignore file,
// along with the directory they apply relative to.
type ignoreFile struct {
	dir      string
	patterns []pattern
}

// Matcher composes the patterns from a root directory and every
// ancestor up to the filesystem root, ordered shallow (filesystem root)
// to deep (scan root), so deeper files override shallower ones when
// evaluated in order.
type Matcher struct {
	files    []ignoreFile
	fileName string
}

// Load walks from root up to the filesystem root collecting FileName
// (default ".hashignore") files, and composes them into a Matcher. A
// missing ignore file at any level is not an error; an unreadable one
// (IoOpen, IoRead) or a malformed one (PatternSyntax) is, fatal at
// configuration time.
func Load(root string) (*Matcher, error) {
	return LoadNamed(root, FileName)
}

// LoadNamed is Load with an overridable ignore-file name.
func LoadNamed(root, fileName string) (*Matcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, herrors.Wrap("ignore", root, herrors.IoOpen, err)
	}
	abs = filepath.Clean(abs)

	var chain []string
	dir := abs
	for {
		chain = append(chain, dir)
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	// chain is scan-root-to-filesystem-root (deep to shallow); reverse so
	// files compose shallow-to-deep, letting deeper ones win ties.
	m := &Matcher{fileName: fileName}
	for i := len(chain) - 1; i >= 0; i-- {
		dir := chain[i]
		path := filepath.Join(dir, fileName)
		f, ok, err := loadOne(dir, path)
		if err != nil {
			return nil, err
		}
		if ok {
			m.files = append(m.files, f)
		}
	}
	return m, nil
}

func loadOne(dir, path string) (ignoreFile, bool, error) {
	data, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ignoreFile{}, false, nil
		}
		return ignoreFile{}, false, herrors.Wrap("ignore", path, herrors.IoOpen, err)
	}
	defer data.Close()

	f := ignoreFile{dir: dir}
	scanner := bufio.NewScanner(data)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		p, err := compile(trimmed)
		if err != nil {
			return ignoreFile{}, false, &herrors.Error{
				Op: "ignore", Path: path, Kind: herrors.PatternSyntax,
				Line: lineNum, Extra: trimmed, Err: err,
			}
		}
		f.patterns = append(f.patterns, p)
	}
	if err := scanner.Err(); err != nil {
		return ignoreFile{}, false, herrors.Wrap("ignore", path, herrors.IoRead, err)
	}
	return f, true, nil
}

func compile(line string) (pattern, error) {
	raw := line
	negate := false
	if strings.HasPrefix(line, "!") {
		negate = true
		line = line[1:]
	}
	// A leading "\!" or "\#" escapes the special meaning; unescape it now
	// that negation has been stripped.
	line = strings.TrimPrefix(line, "\\")

	dirOnly := false
	if strings.HasSuffix(line, "/") && !strings.HasSuffix(line, "\\/") {
		dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}

	anchored := strings.HasPrefix(line, "/")
	globPattern := strings.TrimPrefix(line, "/")

	sources := []string{globPattern}
	// An unanchored pattern with no internal separator matches at any
	// depth below the ignore file's directory, so it also compiles with
	// an explicit "**/" prefix (the bare pattern alone would only match
	// entries directly in that directory).
	if !anchored && !strings.Contains(globPattern, "/") {
		sources = append(sources, "**/"+globPattern)
	}

	p := pattern{raw: raw, negate: negate, dirOnly: dirOnly}
	for _, src := range sources {
		g, err := glob.Compile(src, '/')
		if err != nil {
			return pattern{}, fmt.Errorf("invalid pattern %q: %w", raw, err)
		}
		p.globs = append(p.globs, g)
	}
	return p, nil
}

// Match reports whether the entry at absPath should be ignored. Each
// ignore file in the chain evaluates the path relative to its own
// directory. isDir indicates whether the entry is a directory, used to
// evaluate directory-only patterns.
func (m *Matcher) Match(absPath string, isDir bool) bool {
	if abs, err := filepath.Abs(absPath); err == nil {
		absPath = abs
	}
	absPath = filepath.Clean(absPath)
	ignored := false
	for _, f := range m.files {
		rel, err := filepath.Rel(f.dir, absPath)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		rel = filepath.ToSlash(rel)
		// The ignore file itself is always excluded, at any depth.
		if rel == m.fileName || strings.HasSuffix(rel, "/"+m.fileName) {
			return true
		}
		for _, p := range f.patterns {
			if p.dirOnly && !isDir {
				continue
			}
			if p.matches(rel) {
				ignored = !p.negate
			}
		}
	}
	return ignored
}

// HasPatterns reports whether any ignore file in the chain contributed
// at least one pattern.
func (m *Matcher) HasPatterns() bool {
	for _, f := range m.files {
		if len(f.patterns) > 0 {
			return true
		}
	}
	return false
}
