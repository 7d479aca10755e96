package db

import (
	"Unbewohnte/YTCS/internal/comment"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []comment.Record {
	return []comment.Record{
		{VideoID: "vidA", Author: "@ana", Text: "Ótimo vídeo, obrigado! 🎉", LikeCount: 10, Polarity: 1, PublishedAt: "2024-05-01T10:00:00Z"},
		{VideoID: "vidA", Author: "", Text: "meh", LikeCount: 0, Polarity: 0, PublishedAt: "2024-05-02T10:00:00Z"},
		{VideoID: "vidB", Author: "@bob", Text: "horrível", LikeCount: 3, Polarity: -1, PublishedAt: "2024-05-03T10:00:00Z"},
	}
}

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "nested", "comentarios.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndReadComments(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	records := sampleRecords()
	require.NoError(t, db.Write(ctx, records))

	stored, err := db.AllComments(ctx)
	require.NoError(t, err)
	assert.Equal(t, records, stored)
}

func TestWriteAppends(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Write(ctx, sampleRecords()))
	require.NoError(t, db.Write(ctx, sampleRecords()))

	count, err := db.CountComments(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), count)
}

func TestWriteEmptyBatch(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Write(context.Background(), nil))

	count, err := db.CountComments(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPolarities(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.Write(ctx, sampleRecords()))

	all, err := db.Polarities(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, -1}, all)

	one, err := db.Polarities(ctx, "vidA")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, one)

	none, err := db.Polarities(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestVideoIDsAndDelete(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.Write(ctx, sampleRecords()))

	ids, err := db.VideoIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"vidA", "vidB"}, ids)

	require.NoError(t, db.DeleteAllComments(ctx))
	count, err := db.CountComments(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comentarios.db")
	ctx := context.Background()

	db, err := NewDB(path)
	require.NoError(t, err)
	require.NoError(t, db.Write(ctx, sampleRecords()))
	require.NoError(t, db.Close())

	db, err = NewDB(path)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, path, db.Name())
	count, err := db.CountComments(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
