package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repolens/repolens/pkg/types"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestScanDeterministicOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b/two.go", "package two\n")
	writeFile(t, root, "a/one.go", "package one\n")
	writeFile(t, root, "zed.txt", "hello\n")

	snap, stats, err := Scan(context.Background(), root, Options{})
	require.NoError(t, err)
	require.Equal(t, 3, snap.Len())
	assert.Equal(t, "a/one.go", snap.Records[0].Path)
	assert.Equal(t, "b/two.go", snap.Records[1].Path)
	assert.Equal(t, "zed.txt", snap.Records[2].Path)
	assert.Equal(t, 3, stats.FilesScanned)

	again, _, err := Scan(context.Background(), root, Options{})
	require.NoError(t, err)
	require.Equal(t, snap.Len(), again.Len())
	for i := range snap.Records {
		assert.Equal(t, snap.Records[i].Path, again.Records[i].Path)
		assert.Equal(t, snap.Records[i].Digest, again.Records[i].Digest)
	}
}

func TestScanRootMissing(t *testing.T) {
	_, _, err := Scan(context.Background(), filepath.Join(t.TempDir(), "nope"), Options{})
	require.ErrorIs(t, err, types.ErrRootNotFound)
}

func TestScanSkipsBinary(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "data.bin", "abc\x00def")
	writeFile(t, root, "ok.txt", "text\n")

	snap, stats, err := Scan(context.Background(), root, Options{})
	require.NoError(t, err)
	require.Equal(t, 1, snap.Len())
	assert.Equal(t, "ok.txt", snap.Records[0].Path)
	assert.Equal(t, 1, stats.Skipped[types.SkipBinary])
}

func TestScanSkipsOversize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "big.txt", "0123456789")
	writeFile(t, root, "small.txt", "ok")

	snap, stats, err := Scan(context.Background(), root, Options{MaxFileBytes: 5})
	require.NoError(t, err)
	require.Equal(t, 1, snap.Len())
	assert.Equal(t, "small.txt", snap.Records[0].Path)
	assert.Equal(t, 1, stats.Skipped[types.SkipOversize])
}

func TestScanKeepsEmptyAndUnknown(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "empty.txt", "")
	writeFile(t, root, "mystery.qzx", "strange content\n")

	snap, _, err := Scan(context.Background(), root, Options{})
	require.NoError(t, err)
	require.Equal(t, 2, snap.Len())

	byPath, err := snap.ByPath()
	require.NoError(t, err)

	empty := byPath["empty.txt"]
	require.NotNil(t, empty)
	assert.Equal(t, int64(0), empty.ByteSize)
	assert.Equal(t, 0, empty.LinesTotal)
	assert.GreaterOrEqual(t, empty.TokenEstimate, types.MinTokenEstimate)

	mystery := byPath["mystery.qzx"]
	require.NotNil(t, mystery)
	assert.Equal(t, types.LanguageUnknown, mystery.Language)
}

func TestScanHonorsIgnoreFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "*.log\nout/\n")
	writeFile(t, root, ".lensignore", "secret.txt\n")
	writeFile(t, root, "keep.go", "package keep\n")
	writeFile(t, root, "noise.log", "x\n")
	writeFile(t, root, "out/gen.txt", "x\n")
	writeFile(t, root, "secret.txt", "x\n")

	snap, stats, err := Scan(context.Background(), root, Options{})
	require.NoError(t, err)

	byPath, err := snap.ByPath()
	require.NoError(t, err)
	assert.Contains(t, byPath, "keep.go")
	assert.Contains(t, byPath, ".gitignore")
	assert.NotContains(t, byPath, "noise.log")
	assert.NotContains(t, byPath, "out/gen.txt")
	assert.NotContains(t, byPath, "secret.txt")
	assert.GreaterOrEqual(t, stats.Skipped[types.SkipIgnored], 3)
}

func TestScanDenyDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".git/config", "[core]\n")
	writeFile(t, root, "node_modules/pkg/index.js", "x\n")
	writeFile(t, root, "src/app.go", "package app\n")

	snap, _, err := Scan(context.Background(), root, Options{})
	require.NoError(t, err)
	require.Equal(t, 1, snap.Len())
	assert.Equal(t, "src/app.go", snap.Records[0].Path)
}

func TestScanNoiseFlag(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "testdata/fixture.json", "{}\n")
	writeFile(t, root, "internal/core.go", "package internal\n")

	snap, _, err := Scan(context.Background(), root, Options{})
	require.NoError(t, err)
	byPath, err := snap.ByPath()
	require.NoError(t, err)
	assert.True(t, byPath["testdata/fixture.json"].Noise)
	assert.False(t, byPath["internal/core.go"].Noise)
}

func TestScanEnrichment(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "cmd/tool/main.go", "package main\n\nfunc main() {}\n")

	snap, _, err := Scan(context.Background(), root, Options{})
	require.NoError(t, err)
	rec := snap.Records[0]
	assert.Equal(t, "go", rec.Language)
	assert.Equal(t, "bin", rec.Role)
	assert.Contains(t, rec.Summary, "Entrypoint")
	assert.Contains(t, rec.Tags, "dir:cmd")
	assert.NotEmpty(t, rec.Snippet)
	assert.GreaterOrEqual(t, rec.TokenEstimate, 1)
}

func TestScanSkipEnrichment(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a\n")

	snap, _, err := Scan(context.Background(), root, Options{SkipEnrichment: true})
	require.NoError(t, err)
	rec := snap.Records[0]
	assert.Empty(t, rec.Snippet)
	assert.Empty(t, rec.Summary)
	assert.NotEmpty(t, rec.Digest)
	assert.Equal(t, types.MinTokenEstimate, rec.TokenEstimate)
}

func TestScanSymlinksSkippedByDefault(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "real.txt", "real\n")
	link := filepath.Join(root, "link.txt")
	if err := os.Symlink(filepath.Join(root, "real.txt"), link); err != nil {
		t.Skip("symlinks unavailable")
	}

	snap, _, err := Scan(context.Background(), root, Options{})
	require.NoError(t, err)
	byPath, err := snap.ByPath()
	require.NoError(t, err)
	assert.Contains(t, byPath, "real.txt")
	assert.NotContains(t, byPath, "link.txt")
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "go", DetectLanguage("x/y/z.go", nil))
	assert.Equal(t, "rust", DetectLanguage("src/main.rs", nil))
	assert.Equal(t, "make", DetectLanguage("Makefile", nil))
	assert.Equal(t, "python", DetectLanguage("bin/tool", []byte("#!/usr/bin/env python3\n")))
	assert.Equal(t, "shell", DetectLanguage("bin/run", []byte("#!/bin/sh\n")))
	assert.Equal(t, types.LanguageUnknown, DetectLanguage("weird.qzx", []byte("data")))
}

func TestLineCounts(t *testing.T) {
	assert.Equal(t, 0, countLines(""))
	assert.Equal(t, 1, countLines("one"))
	assert.Equal(t, 1, countLines("one\n"))
	assert.Equal(t, 3, countLines("a\n\nb\n"))
	assert.Equal(t, 2, countNonBlank("a\n\nb\n"))
}
