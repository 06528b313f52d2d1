package infra

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSheetStore_Put(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalSheetStore(dir)

	loc, err := store.Put(context.Background(), "events/e1/sheet.pdf", []byte("%PDF-1.3"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "events", "e1", "sheet.pdf"), loc)

	got, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(got))
}

func TestNewSheetStore_Selection(t *testing.T) {
	ctx := context.Background()

	s, err := NewSheetStore(ctx, &config.Config{SheetStorage: "local", PDFStoragePath: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalSheetStore{}, s)

	_, err = NewSheetStore(ctx, &config.Config{SheetStorage: "ftp"})
	assert.Error(t, err)

	_, err = NewSheetStore(ctx, &config.Config{SheetStorage: "s3"})
	assert.Error(t, err, "bucket is required")
}
