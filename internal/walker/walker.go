package walker

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathNotFound is returned when a root does not exist, is not a
// directory or cannot be read.
var ErrPathNotFound = errors.New("path not found")

// IgnoreFile is the optional per-root file that extends the skip-set.
const IgnoreFile = ".charonignore"

// DefaultSkipDirs are used when the configuration does not name its own.
// Generic words carry a trailing slash so they only prune directories and
// leave files such as environment.py or builder.py listed.
var DefaultSkipDirs = []string{
	".git",
	".svn",
	".hg",
	".venv",
	"venv/",
	"env/",
	"node_modules",
	"vendor/",
	"__pycache__",
	".idea",
	".vscode",
	".mypy_cache",
	".pytest_cache",
	"dist/",
	"build/",
}

// DefaultExtensions is the source-file allow-list: one code extension and one
// notebook extension.
var DefaultExtensions = []string{".py", ".ipynb"}

// SkipSet holds directory names excluded from traversal and file listing.
// The value is true for directory-only entries, which never filter file
// names.
type SkipSet map[string]bool

// NewSkipSet builds a SkipSet from names. A trailing slash marks a
// directory-only entry. Blank names are ignored.
func NewSkipSet(names ...string) SkipSet {
	s := make(SkipSet, len(names))
	s.Add(names...)
	return s
}

// Add inserts names using the same rules as NewSkipSet. An entry that is
// already a file token stays one.
func (s SkipSet) Add(names ...string) {
	for _, n := range names {
		n = strings.TrimSpace(n)
		dirOnly := strings.HasSuffix(n, "/")
		n = strings.TrimRight(n, "/")
		if n == "" {
			continue
		}
		if prev, ok := s[n]; ok && !prev {
			continue
		}
		s[n] = dirOnly
	}
}

// Merge returns a new set holding the entries of s and names.
func (s SkipSet) Merge(names ...string) SkipSet {
	out := make(SkipSet, len(s)+len(names))
	for k, v := range s {
		out[k] = v
	}
	out.Add(names...)
	return out
}

// Names returns the entries of the set in no particular order.
func (s SkipSet) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	return names
}

// Has reports whether name is an exact member of the set.
func (s SkipSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// ContainedIn reports whether any file token of the set occurs inside name.
// Directory-only entries are not considered.
func (s SkipSet) ContainedIn(name string) bool {
	for skip, dirOnly := range s {
		if !dirOnly && strings.Contains(name, skip) {
			return true
		}
	}
	return false
}

// Warning is a non-fatal failure on a single directory during traversal.
type Warning struct {
	Path string
	Err  error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %v", w.Path, w.Err)
}

// excluded reports whether a directory entry must not be descended into.
func excluded(name string, skip SkipSet) bool {
	return strings.HasPrefix(name, ".") || skip.Has(name)
}

// checkRoot resolves root to an absolute path and verifies it is a readable
// directory.
func checkRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrPathNotFound, root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrPathNotFound, abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrPathNotFound, abs)
	}
	f, err := os.Open(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrPathNotFound, abs, err)
	}
	defer f.Close()
	if _, err := f.ReadDir(1); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%w: %s: %v", ErrPathNotFound, abs, err)
	}
	return abs, nil
}

// visitFunc receives one directory with its already-filtered subdirectory
// names and its file entries.
type visitFunc func(dir string, subdirs []string, files []fs.DirEntry)

// walkTopDown visits dir and then each eligible subdirectory, depth first.
// Each directory is reported with all its children before any of them is
// entered. os.ReadDir sorts by name, so the order is stable across calls.
func walkTopDown(dir string, skip SkipSet, visit visitFunc) []Warning {
	var warnings []Warning
	var walk func(string)
	walk = func(d string) {
		entries, err := os.ReadDir(d)
		if err != nil {
			warnings = append(warnings, Warning{Path: d, Err: err})
			if len(entries) == 0 {
				return
			}
		}

		var subdirs []string
		var files []fs.DirEntry
		for _, e := range entries {
			if e.IsDir() {
				if !excluded(e.Name(), skip) {
					subdirs = append(subdirs, filepath.Join(d, e.Name()))
				}
				continue
			}
			// Symlinks and other non-regular entries are listed as files only
			// when they resolve to something that is not a directory.
			if e.Type()&fs.ModeSymlink != 0 {
				if info, err := os.Stat(filepath.Join(d, e.Name())); err != nil || info.IsDir() {
					continue
				}
			}
			files = append(files, e)
		}

		visit(d, subdirs, files)
		for _, sd := range subdirs {
			walk(sd)
		}
	}
	walk(dir)
	return warnings
}

// Scan returns the absolute path of every eligible subdirectory under root.
// Hidden directories and skip-set members are pruned together with
// everything beneath them. Unreadable subdirectories become warnings.
func Scan(root string, skip SkipSet) ([]string, []Warning, error) {
	absRoot, err := checkRoot(root)
	if err != nil {
		return nil, nil, err
	}

	var candidates []string
	warnings := walkTopDown(absRoot, skip, func(_ string, subdirs []string, _ []fs.DirEntry) {
		candidates = append(candidates, subdirs...)
	})
	return candidates, warnings, nil
}

// SourceFiles lists the files under folder whose extension is in exts.
// Branches containing a hidden or skip-listed directory segment are not
// entered, and files whose name contains a skip-listed token are dropped.
func SourceFiles(folder string, exts []string, skip SkipSet) ([]string, []Warning, error) {
	absFolder, err := checkRoot(folder)
	if err != nil {
		return nil, nil, err
	}

	allowed := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = true
	}

	var files []string
	warnings := walkTopDown(absFolder, skip, func(dir string, _ []string, entries []fs.DirEntry) {
		for _, e := range entries {
			name := e.Name()
			if skip.ContainedIn(name) {
				continue
			}
			if !allowed[strings.ToLower(filepath.Ext(name))] {
				continue
			}
			files = append(files, filepath.Join(dir, name))
		}
	})
	return files, warnings, nil
}

// LoadIgnoreFile reads extra skip-set entries from root/.charonignore.
// One name per line, using the NewSkipSet rules; blank lines and # comments
// are ignored.
// A missing file yields nil.
func LoadIgnoreFile(root string) []string {
	f, err := os.Open(filepath.Join(root, IgnoreFile))
	if err != nil {
		return nil
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names
}
