// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func editArgs(path, oldStr, newStr string) map[string]interface{} {
	return map[string]interface{}{"path": path, "old_str": oldStr, "new_str": newStr}
}

func TestEdit_Basic(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "f.txt", "one\ntwo\nthree\n")
	reg := newTestRegistry(t, dir)

	res := reg.Execute("edit_file", editArgs("f.txt", "two", "2"))
	require.True(t, res.Success, res.ErrorMessage)
	assert.Equal(t, "Edited f.txt", res.Content)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "one\n2\nthree\n", string(data))
}

func TestEdit_DetailsJSON(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "f.txt", "one\ntwo\nthree\n")
	reg := newTestRegistry(t, dir)

	res := reg.Execute("edit_file", editArgs("f.txt", "two", "2"))
	require.True(t, res.Success, res.ErrorMessage)
	require.NotEmpty(t, res.DetailsJSON)

	parsed := gjson.ParseBytes(res.DetailsJSON)
	assert.Equal(t, int64(2), parsed.Get("first_changed_line").Int())

	wantDiff := "1   one\n" +
		"2 - two\n" +
		"2 + 2\n" +
		"3   three\n"
	assert.Equal(t, wantDiff, parsed.Get("diff").String())
}

func TestEdit_RoundTripBOMAndCRLF(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "f.txt", "\xEF\xBB\xBFa\r\nb\r\n")
	reg := newTestRegistry(t, dir)

	res := reg.Execute("edit_file", editArgs("f.txt", "a", "x"))
	require.True(t, res.Success, res.ErrorMessage)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\xEF\xBB\xBFx\r\nb\r\n", string(data),
		"BOM and CRLF endings must survive the edit")
}

func TestEdit_FuzzyTrailingWhitespace(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "f.txt", "foo   \nbar")
	reg := newTestRegistry(t, dir)

	res := reg.Execute("edit_file", editArgs("f.txt", "foo\nbar", "qux\nbar"))
	require.True(t, res.Success, res.ErrorMessage)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "qux\nbar", string(data))
}

func TestEdit_FuzzyTypographicPunctuation(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "f.txt", "say “hello” now\n")
	reg := newTestRegistry(t, dir)

	res := reg.Execute("edit_file", editArgs("f.txt", `say "hello" now`, `say "bye" now`))
	require.True(t, res.Success, res.ErrorMessage)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "say \"bye\" now\n", string(data))
}

func TestEdit_ExactPreferredOverFuzzy(t *testing.T) {
	dir := t.TempDir()
	// The needle occurs once exactly; the fuzzy form would also hit the
	// curly-quoted line and report ambiguity if fuzzy ran first.
	path := writeTestFile(t, dir, "f.txt", "say \"hi\"\nsay “hi”\n")
	reg := newTestRegistry(t, dir)

	res := reg.Execute("edit_file", editArgs("f.txt", `say "hi"`, "greet"))
	require.True(t, res.Success, res.ErrorMessage)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "greet\nsay “hi”\n", string(data))
}

func TestEdit_Ambiguous(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "f.txt", "x\nx\n")
	reg := newTestRegistry(t, dir)

	res := reg.Execute("edit_file", editArgs("f.txt", "x", "y"))
	require.False(t, res.Success)
	assert.Equal(t,
		"old_str matches 2 locations in f.txt; provide more context to disambiguate",
		res.ErrorMessage)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x\nx\n", string(data), "a failing edit never touches the file")
}

func TestEdit_NotFound(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "f.txt", "alpha\n")
	reg := newTestRegistry(t, dir)

	res := reg.Execute("edit_file", editArgs("f.txt", "omega", "x"))
	require.False(t, res.Success)
	assert.Equal(t, "old_str not found in f.txt (tried exact and fuzzy matching)",
		res.ErrorMessage)
}

func TestEdit_NoOpRejected(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "f.txt", "foo\n")
	reg := newTestRegistry(t, dir)

	// old_str and new_str differ only in trailing whitespace, so the fuzzy
	// match succeeds but the spliced content is byte-identical.
	res := reg.Execute("edit_file", editArgs("f.txt", "foo\t", "foo"))
	require.False(t, res.Success)
	assert.Contains(t, res.ErrorMessage, "no change")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "foo\n", string(data))
}

func TestEdit_IdenticalArgsRejected(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "f.txt", "foo\n")
	reg := newTestRegistry(t, dir)

	res := reg.Execute("edit_file", editArgs("f.txt", "foo", "foo"))
	require.False(t, res.Success)
	assert.Equal(t, "old_str and new_str are identical", res.ErrorMessage)
}

func TestEdit_MissingFile(t *testing.T) {
	reg := newTestRegistry(t, t.TempDir())

	res := reg.Execute("edit_file", editArgs("ghost.txt", "a", "b"))
	require.False(t, res.Success)
	assert.Equal(t, "file not found: ghost.txt", res.ErrorMessage)
}

func TestEdit_MissingArgs(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "f.txt", "x\n")
	reg := newTestRegistry(t, dir)

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"no path", map[string]interface{}{"old_str": "a", "new_str": "b"}, "path is required"},
		{"no old_str", map[string]interface{}{"path": "f.txt", "new_str": "b"}, "old_str is required"},
		{"no new_str", map[string]interface{}{"path": "f.txt", "old_str": "a"}, "new_str is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := reg.Execute("edit_file", tt.args)
			if res.Success || res.ErrorMessage != tt.want {
				t.Errorf("got (%v, %q), want %q", res.Success, res.ErrorMessage, tt.want)
			}
		})
	}
}

func TestEdit_DeleteText(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "f.txt", "keep\ndrop\nkeep2\n")
	reg := newTestRegistry(t, dir)

	res := reg.Execute("edit_file", editArgs("f.txt", "drop\n", ""))
	require.True(t, res.Success, res.ErrorMessage)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep\nkeep2\n", string(data))
}

func TestEdit_PreservesFileMode(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "run.sh", "echo old\n")
	require.NoError(t, os.Chmod(path, 0755))
	reg := newTestRegistry(t, dir)

	res := reg.Execute("edit_file", editArgs("run.sh", "old", "new"))
	require.True(t, res.Success, res.ErrorMessage)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

func TestEdit_MultilineReplacement(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "f.go",
		"func a() {\n\treturn 1\n}\n\nfunc b() {\n\treturn 2\n}\n")
	reg := newTestRegistry(t, dir)

	res := reg.Execute("edit_file", editArgs("f.go",
		"func a() {\n\treturn 1\n}", "func a() {\n\treturn 10\n}"))
	require.True(t, res.Success, res.ErrorMessage)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "return 10"))
	assert.True(t, strings.Contains(string(data), "return 2"))

	first := gjson.ParseBytes(res.DetailsJSON).Get("first_changed_line").Int()
	assert.Equal(t, int64(2), first)
}

func TestEdit_TargetIsDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))
	reg := newTestRegistry(t, dir)

	res := reg.Execute("edit_file", editArgs("sub", "a", "b"))
	require.False(t, res.Success)
	assert.Contains(t, res.ErrorMessage, "directory")
}
