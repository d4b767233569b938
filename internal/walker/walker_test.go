package walker

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/credscan/internal/findings"
	"github.com/scan-io-git/credscan/internal/provider"
	"github.com/scan-io-git/credscan/internal/provider/memory"
)

func TestWalkFindsCredentialInNestedFile(t *testing.T) {
	repo := memory.New("app").
		AddFile("config.py", "import os\n\n\n\npassword = \"abc123\"\n").
		AddFile("src/main.go", "package main\n").
		AddFile("src/db/conn.yml", "user: admin\ntoken: 'xyz'\n")

	w := New(nil)
	got, err := w.Walk(context.Background(), repo)
	require.NoError(t, err)

	assert.Equal(t, []findings.Finding{
		{FilePath: "config.py", MatchedString: "abc123", LineNumber: 5, FullLine: `password = "abc123"`},
		{FilePath: "src/db/conn.yml", MatchedString: "xyz", LineNumber: 2, FullLine: `token: 'xyz'`},
	}, got)

	stats := w.Stats()
	assert.Equal(t, 3, stats.FilesScanned)
	assert.Equal(t, 2, stats.DirectoriesListed)
}

func TestWalkVisitsEveryFileExactlyOnce(t *testing.T) {
	repo := memory.New("app").
		AddFile("a.txt", "nothing here").
		AddFile("b/c.txt", "secret=1").
		AddFile("b/d/e.txt", "pwd=2").
		AddFile("f/g.txt", "")

	_, err := New(nil).Walk(context.Background(), repo)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a.txt", "b/c.txt", "b/d/e.txt", "f/g.txt"}, repo.Reads())
}

func TestWalkIsBreadthFirst(t *testing.T) {
	repo := memory.New("app").
		AddFile("z.txt", "key=root").
		AddFile("a/deep/x.txt", "key=deep").
		AddFile("a/y.txt", "key=mid")

	got, err := New(nil).Walk(context.Background(), repo)
	require.NoError(t, err)

	var order []string
	for _, f := range got {
		order = append(order, f.MatchedString)
	}
	assert.Equal(t, []string{"root", "mid", "deep"}, order)
}

func TestWalkSubmoduleReachableTwice(t *testing.T) {
	lib := memory.New("lib").AddFile("settings.yml", "token: 'xyz'\n")
	other := memory.New("other").AddSubmodule("vendor/lib", lib)
	repo := memory.New("app").
		AddSubmodule("vendor/lib", lib).
		AddSubmodule("vendor/other", other)

	got, err := New(nil).Walk(context.Background(), repo)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "settings.yml", got[0].FilePath)
	assert.Equal(t, "xyz", got[0].MatchedString)
	assert.Equal(t, []string{"settings.yml"}, lib.Reads())
}

func TestWalkSubmoduleCycleTerminates(t *testing.T) {
	a := memory.New("a").AddFile("a.env", "password=fromA")
	b := memory.New("b").AddFile("b.env", "password=fromB")
	a.AddSubmodule("deps/b", b)
	b.AddSubmodule("deps/a", a)

	w := New(nil)
	got, err := w.Walk(context.Background(), a)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "fromA", got[0].MatchedString)
	assert.Equal(t, "fromB", got[1].MatchedString)
	assert.Equal(t, 1, w.Stats().SubmodulesWalked)
}

func TestWalkSamePathInDifferentSubmodulesScannedOnce(t *testing.T) {
	one := memory.New("one").AddFile(".env", "secret=one")
	two := memory.New("two").AddFile(".env", "secret=two")
	repo := memory.New("app").
		AddSubmodule("mods/one", one).
		AddSubmodule("mods/two", two)

	got, err := New(nil).Walk(context.Background(), repo)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "one", got[0].MatchedString)
	assert.Empty(t, two.Reads())
}

func TestWalkRecoverableErrors(t *testing.T) {
	repo := memory.New("app").
		AddFile("bad.bin", "password=never").
		AddFile("good.txt", "password=ok").
		AddFile("locked/inner.txt", "password=hidden")
	repo.Unreadable["bad.bin"] = errors.New("decode failure")
	repo.Unlistable["locked"] = errors.New("forbidden")
	repo.Broken["vendor/missing"] = errors.New("repository not found")
	repo.Extra[""] = []provider.Entry{provider.Unknown("link", "symlink")}

	var logs bytes.Buffer
	w := New(hclog.New(&hclog.LoggerOptions{Output: &logs, Level: hclog.Warn}))
	got, err := w.Walk(context.Background(), repo)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "good.txt", got[0].FilePath)

	stats := w.Stats()
	assert.Equal(t, 3, stats.Errors)
	assert.Equal(t, 1, stats.EntriesSkipped)

	out := logs.String()
	assert.Contains(t, out, "error reading file")
	assert.Contains(t, out, "bad.bin")
	assert.Contains(t, out, "failed to list directory")
	assert.Contains(t, out, "could not get repository for submodule")
	assert.Contains(t, out, "unknown content type")
}

func TestWalkRootListingFailure(t *testing.T) {
	repo := memory.New("app")
	repo.Unlistable[""] = errors.New("bad credentials")

	_, err := New(nil).Walk(context.Background(), repo)
	assert.ErrorContains(t, err, "bad credentials")
}

func TestWalkHonoursCancellation(t *testing.T) {
	repo := memory.New("app").AddFile("a.txt", "key=1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := New(nil).Walk(ctx, repo)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, got)
}

func TestWalkEmptyRepository(t *testing.T) {
	got, err := New(nil).Walk(context.Background(), memory.New("empty"))
	require.NoError(t, err)
	assert.Empty(t, got)
}
