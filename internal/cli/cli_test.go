package cli

import (
	"Unbewohnte/YTCS/internal/comment"
	"Unbewohnte/YTCS/internal/config"
	"Unbewohnte/YTCS/internal/export"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := New()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	conf := config.DefaultConfig()
	conf.Export.Dir = filepath.Join(dir, "export")
	path := filepath.Join(dir, "config.json")
	require.NoError(t, conf.Save(path))
	return path
}

func TestFirstStartWritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	_, err := run(t, "stats", "--config", path)
	var created *ConfigCreatedError
	require.ErrorAs(t, err, &created)
	assert.Equal(t, path, created.Path)

	conf, err := config.ConfigFrom(path)
	require.NoError(t, err)
	assert.NoError(t, conf.Validate())
}

func TestInvalidConfigIsRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	conf := config.DefaultConfig()
	conf.Defaults.Sort = "views"
	require.NoError(t, conf.Save(path))

	_, err := run(t, "stats", "-c", path)
	assert.ErrorIs(t, err, comment.ErrUnknownSortKey)
}

func TestImportThenStats(t *testing.T) {
	path := writeConfig(t)

	csvPath := filepath.Join(t.TempDir(), "comentarios.csv")
	published := "2025-03-01T12:00:00Z"
	records := []comment.Record{
		{VideoID: "aaa", Author: "ana", Text: "ótimo", LikeCount: 4, Polarity: 1, PublishedAt: published},
		{VideoID: "aaa", Author: "rui", Text: "ruim", LikeCount: 0, Polarity: -1, PublishedAt: published},
		{VideoID: "bbb", Author: "eva", Text: "ok", LikeCount: 1, Polarity: 0.5, PublishedAt: published},
	}
	require.NoError(t, (&export.CSVWriter{Path: csvPath}).Write(t.Context(), records))

	_, err := run(t, "import", csvPath, "-c", path)
	require.NoError(t, err)

	out, err := run(t, "stats", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "*Comentários:* 3")
	assert.Contains(t, out, "Positivo: 2")
	assert.Contains(t, out, "- `aaa`: 2 comentários (negativo 1, neutro 0, positivo 1)")
	assert.Contains(t, out, "- `bbb`: 1 comentários (negativo 0, neutro 0, positivo 1)")

	out, err = run(t, "stats", "aaa", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "*Comentários:* 2")
	assert.Contains(t, out, "Negativo: 1")
	assert.NotContains(t, out, "Por vídeo")

	_, err = run(t, "clear", "-c", path)
	assert.Error(t, err)

	out, err = run(t, "clear", "--yes", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "3 comentários removidos")

	out, err = run(t, "stats", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Nenhum dado")
	assert.NotContains(t, out, "Por vídeo")
}

func TestImportUnknownFormat(t *testing.T) {
	path := writeConfig(t)
	file := filepath.Join(t.TempDir(), "comments.txt")
	require.NoError(t, os.WriteFile(file, []byte("hello"), 0644))

	_, err := run(t, "import", file, "-c", path)
	assert.ErrorIs(t, err, export.ErrUnsupportedFormat)
}

func TestBuildRequest(t *testing.T) {
	defaults := config.DefaultConfig().Defaults
	defaults.MaxResults = 50
	defaults.Sort = string(comment.SortDate)

	flags := fetchCmd().Flags()
	require.NoError(t, flags.Parse(nil))
	req, err := buildRequest(flags, defaults, []string{"v=abc"})
	require.NoError(t, err)
	assert.Equal(t, 50, req.MaxResults)
	assert.Equal(t, comment.SortDate, req.Sort)
	assert.True(t, req.Descending)
	assert.Equal(t, comment.DefaultFilter(), req.Filter)
	assert.Equal(t, []string{"v=abc"}, req.URLs)

	flags = fetchCmd().Flags()
	require.NoError(t, flags.Parse([]string{"--max", "15", "--min-likes", "2", "--max-polarity", "0", "--sort", "likes", "--asc"}))
	req, err = buildRequest(flags, defaults, []string{"v=abc"})
	require.NoError(t, err)
	assert.Equal(t, 15, req.MaxResults)
	assert.Equal(t, comment.Filter{MinLikes: 2, MinPolarity: -1, MaxPolarity: 0}, req.Filter)
	assert.Equal(t, comment.SortLikes, req.Sort)
	assert.False(t, req.Descending)
}

func TestBuildRequestRejectsBadFlags(t *testing.T) {
	defaults := config.DefaultConfig().Defaults

	for _, args := range [][]string{
		{"--max", "0"},
		{"--min-likes", "-1"},
		{"--min-polarity", "0.5", "--max-polarity", "0"},
		{"--max-polarity", "2"},
		{"--sort", "views"},
	} {
		flags := fetchCmd().Flags()
		require.NoError(t, flags.Parse(args))
		_, err := buildRequest(flags, defaults, []string{"v=abc"})
		assert.Error(t, err, args)
	}
}

func TestFetchNeedsURL(t *testing.T) {
	path := writeConfig(t)
	_, err := run(t, "fetch", "-c", path)
	assert.Error(t, err)
}
