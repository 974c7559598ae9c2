// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// search.go implements the glob and grep tools. Both delegate to an
// external search binary and fall back transparently to an in-process
// walker when it cannot be spawned. Exit code 1 from the binary means
// "no matches", not an error.

package tools

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/evmts/smithers-sub016/internal/util"
)

const (
	// searchMaxResults caps glob files and grep match lines.
	searchMaxResults = 100

	// grepMaxDisplayCols caps each displayed match line in terminal columns.
	grepMaxDisplayCols = 300
)

// searchIgnoreDirs are directory names the fallback walkers never enter.
// Hidden directories are skipped separately.
var searchIgnoreDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"target":       true,
	"dist":         true,
	"build":        true,
	"venv":         true,
	"__pycache__":  true,
}

var errWalkStopped = errors.New("walk stopped")

// =============================================================================
// GLOB
// =============================================================================

// execGlob finds files by name pattern.
func execGlob(ctx *Context) Result {
	pattern := ctx.GetString("pattern", "")
	if pattern == "" {
		return errorResult("pattern is required")
	}
	path := ctx.GetString("path", ".")

	root := ctx.ResolvePath(path)
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return errorResult("path not found: %s", path)
		}
		return errorResult("cannot access path: %v", err)
	}
	if !info.IsDir() {
		return errorResult("not a directory: %s", path)
	}

	if ctx.Cancelled() {
		return cancelResult()
	}

	var files []string
	out, err := exec.Command(ctx.rgPath, "--files", "-g", pattern, root).Output()
	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case !errors.As(err, &exitErr):
			// Binary could not be spawned; fall back silently.
			files = globWalk(ctx, root, pattern)
			if ctx.Cancelled() {
				return cancelResult()
			}
		case exitErr.ExitCode() == 1:
			// No matches.
		default:
			return errorResult("search failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
	} else {
		files = splitPhysicalLines(string(out))
	}

	if len(files) == 0 {
		return okResult("No files found")
	}

	for i, f := range files {
		files[i] = displayPath(ctx, f)
	}
	sort.Strings(files)
	total := len(files)
	truncated := false
	if total > searchMaxResults {
		files = files[:searchMaxResults]
		truncated = true
	}

	content := strings.Join(files, "\n")
	if truncated {
		content += fmt.Sprintf("\n[output truncated: showing first %d of %d matches]",
			searchMaxResults, total)
	}
	return Result{
		Success:   true,
		Content:   content,
		Truncated: truncated,
	}
}

// globWalk is the in-process fallback when the search binary is missing.
// Hidden entries are skipped, mirroring the binary's defaults.
func globWalk(ctx *Context, root, pattern string) []string {
	var files []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Cancelled() {
			return errWalkStopped
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && skipSearchDir(name) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if matchSimpleGlob(pattern, filepath.ToSlash(rel)) {
			files = append(files, path)
		}
		return nil
	})
	return files
}

func skipSearchDir(name string) bool {
	return strings.HasPrefix(name, ".") || searchIgnoreDirs[name]
}

// displayPath reports p relative to the working directory, with forward
// slashes, so results can be passed back to the file tools as-is. Paths
// outside the working directory stay absolute.
func displayPath(ctx *Context, p string) string {
	rel, err := filepath.Rel(ctx.WorkDir, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return p
	}
	return filepath.ToSlash(rel)
}

// matchSimpleGlob supports exactly three pattern shapes: "*.ext",
// "**/*.ext" (equivalent: both match by basename suffix anywhere in the
// tree), and substring matching with "*" wildcards. This is deliberately
// not full glob grammar; "?" and bracket classes match literally.
func matchSimpleGlob(pattern, relPath string) bool {
	if suffix, ok := extensionPattern(pattern); ok {
		return strings.HasSuffix(filepath.Base(relPath), suffix)
	}
	return wildcardSubstring(relPath, pattern)
}

// extensionPattern recognizes "*.ext" and "**/*.ext", returning ".ext".
func extensionPattern(pattern string) (string, bool) {
	pattern = strings.TrimPrefix(pattern, "**/")
	if !strings.HasPrefix(pattern, "*.") {
		return "", false
	}
	suffix := pattern[1:]
	if strings.ContainsAny(suffix, "*/") {
		return "", false
	}
	return suffix, true
}

// wildcardSubstring reports whether s contains the "*"-separated pieces of
// pattern in order.
func wildcardSubstring(s, pattern string) bool {
	for _, piece := range strings.Split(pattern, "*") {
		if piece == "" {
			continue
		}
		idx := strings.Index(s, piece)
		if idx < 0 {
			return false
		}
		s = s[idx+len(piece):]
	}
	return true
}

// =============================================================================
// GREP
// =============================================================================

type grepMatch struct {
	file string
	line int
	text string
}

// execGrep searches file contents for a regular expression.
func execGrep(ctx *Context) Result {
	pattern := ctx.GetString("pattern", "")
	if pattern == "" {
		return errorResult("pattern is required")
	}
	path := ctx.GetString("path", ".")
	include := ctx.GetString("include", "")

	root := ctx.ResolvePath(path)
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return errorResult("path not found: %s", path)
		}
		return errorResult("cannot access path: %v", err)
	}

	if ctx.Cancelled() {
		return cancelResult()
	}

	args := []string{"-n", "--color=never", "--no-heading", "-H"}
	if include != "" {
		args = append(args, "-g", include)
	}
	args = append(args, pattern, root)

	var matches []grepMatch
	out, err := exec.Command(ctx.rgPath, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case !errors.As(err, &exitErr):
			// Binary could not be spawned; fall back silently.
			var walkErr error
			matches, walkErr = grepWalk(ctx, root, pattern, include)
			if walkErr != nil {
				return errorResult("%v", walkErr)
			}
			if ctx.Cancelled() {
				return cancelResult()
			}
		case exitErr.ExitCode() == 1:
			// No matches.
		default:
			return errorResult("search failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
	} else {
		for _, line := range splitPhysicalLines(string(out)) {
			if m, ok := parseGrepLine(line); ok {
				matches = append(matches, m)
			}
		}
	}

	if len(matches) == 0 {
		return okResult("No matches found")
	}

	truncated := false
	if len(matches) > searchMaxResults {
		matches = matches[:searchMaxResults]
		truncated = true
	}

	var b strings.Builder
	lastFile := ""
	for _, m := range matches {
		if m.file != lastFile {
			if lastFile != "" {
				b.WriteString("\n")
			}
			b.WriteString(displayPath(ctx, m.file))
			b.WriteString(":\n")
			lastFile = m.file
		}
		fmt.Fprintf(&b, "  Line %d: %s\n", m.line, util.TruncateDisplay(m.text, grepMaxDisplayCols))
	}

	content := strings.TrimSuffix(b.String(), "\n")
	if truncated {
		content += fmt.Sprintf("\n[results capped at %d matches]", searchMaxResults)
	}
	return Result{
		Success:   true,
		Content:   content,
		Truncated: truncated,
	}
}

// parseGrepLine splits the binary's "path:lineno:text" output format.
func parseGrepLine(line string) (grepMatch, bool) {
	for start := 0; start < len(line); {
		i := strings.Index(line[start:], ":")
		if i < 0 {
			return grepMatch{}, false
		}
		i += start
		j := i + 1
		for j < len(line) && line[j] >= '0' && line[j] <= '9' {
			j++
		}
		if j > i+1 && j < len(line) && line[j] == ':' {
			n, err := strconv.Atoi(line[i+1 : j])
			if err == nil {
				return grepMatch{file: line[:i], line: n, text: line[j+1:]}, true
			}
		}
		start = i + 1
	}
	return grepMatch{}, false
}

// grepWalk is the in-process fallback when the search binary is missing.
// The match cap bounds the walk: collection stops as soon as it is hit.
func grepWalk(ctx *Context, root, pattern, include string) ([]grepMatch, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %v", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot access path: %v", err)
	}

	var matches []grepMatch
	if !info.IsDir() {
		scanGrepFile(ctx, root, re, &matches)
		return matches, nil
	}

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Cancelled() {
			return errWalkStopped
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && skipSearchDir(name) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		if include != "" {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return nil
			}
			if !matchSimpleGlob(include, filepath.ToSlash(rel)) {
				return nil
			}
		}
		if !scanGrepFile(ctx, path, re, &matches) {
			return errWalkStopped
		}
		return nil
	})
	return matches, nil
}

// scanGrepFile appends matches from one file. Returns false when collection
// should stop (cap reached or cancellation raised). Unreadable and binary
// files are skipped silently.
func scanGrepFile(ctx *Context, path string, re *regexp.Regexp, matches *[]grepMatch) bool {
	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	probe := make([]byte, readBinaryProbeBytes)
	n, _ := f.Read(probe)
	if bytes.IndexByte(probe[:n], 0) >= 0 {
		return true
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return true
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if lineNum%100 == 0 && ctx.Cancelled() {
			return false
		}
		text := scanner.Text()
		if re.MatchString(text) {
			*matches = append(*matches, grepMatch{file: path, line: lineNum, text: text})
			if len(*matches) > searchMaxResults {
				return false
			}
		}
	}
	return true
}
