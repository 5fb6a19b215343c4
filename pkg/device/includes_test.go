package device

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/beam-cloud/maxbuild/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectIncludes(t *testing.T) {
	dir := t.TempDir()
	single := writeFile(t, t.TempDir(), "single.txt", []byte("s"))

	writeFile(t, dir, "b.js", []byte("b"))
	writeFile(t, dir, "a/z.svg", []byte("z"))
	writeFile(t, dir, "a/y.png", []byte("y"))
	writeFile(t, dir, ".DS_Store", []byte("junk"))
	writeFile(t, dir, ".git/config", []byte("junk"))

	files, err := CollectIncludes([]string{single, dir})
	require.NoError(t, err)

	assert.Equal(t, []string{
		single,
		filepath.Join(dir, "a", "y.png"),
		filepath.Join(dir, "a", "z.svg"),
		filepath.Join(dir, "b.js"),
	}, files)
}

func TestCollectIncludesMissingPath(t *testing.T) {
	_, err := CollectIncludes([]string{filepath.Join(t.TempDir(), "nope")})
	assert.ErrorIs(t, err, common.ErrFileNotFound)
}

func TestCollectIncludesEmpty(t *testing.T) {
	files, err := CollectIncludes(nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func baseNames(paths []string) []string {
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	return names
}

func TestCollectIncludesHiddenRootWithTrailingSlash(t *testing.T) {
	root := filepath.Join(t.TempDir(), ".assets")
	writeFile(t, root, "knob.svg", []byte("k"))
	writeFile(t, root, ".cache/skip.js", []byte("x"))

	for _, include := range []string{root, root + string(filepath.Separator)} {
		files, err := CollectIncludes([]string{include})
		require.NoError(t, err, include)
		assert.Equal(t, []string{"knob.svg"}, baseNames(files), include)
	}
}

func TestCollectIncludesCurrentDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "helper.js", []byte("h"))
	writeFile(t, dir, ".hidden.js", []byte("x"))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	for _, include := range []string{".", "./"} {
		files, err := CollectIncludes([]string{include})
		require.NoError(t, err, include)
		assert.Equal(t, []string{"helper.js"}, baseNames(files), include)
	}
}
