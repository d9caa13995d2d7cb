package files

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/itsatony/rahub/internal/errors"
	"github.com/itsatony/rahub/internal/models"
	"github.com/matryer/is"
)

func testSetup(t *testing.T, maxSize int64) (*is.I, context.Context, *FileRepo) {
	is := is.New(t)
	repo, err := NewFileRepository(FileConfig{BasePath: t.TempDir(), MaxFileSize: maxSize})
	is.NoErr(err)
	return is, context.Background(), repo
}

func testBlob() *models.Blob {
	return &models.Blob{
		ID:        42,
		DeviceID:  7,
		DataTime:  time.Date(2024, 3, 1, 12, 30, 5, 0, time.UTC),
		Extension: "jpg",
		FileSize:  5,
	}
}

func TestStoreAndOpen(t *testing.T) {
	is, ctx, repo := testSetup(t, 0)

	name, err := repo.Store(ctx, testBlob(), strings.NewReader("hello"))
	is.NoErr(err)
	is.Equal(name, filepath.Join("7", "20240301_123005_42.jpg"))

	f, err := repo.Open(ctx, name)
	is.NoErr(err)
	defer f.Close()
	content, err := io.ReadAll(f)
	is.NoErr(err)
	is.Equal(string(content), "hello")
}

func TestStoreRejectsOversizedPayload(t *testing.T) {
	is, ctx, repo := testSetup(t, 4)

	blob := testBlob()
	blob.FileSize = 3 // devices may under-report
	_, err := repo.Store(ctx, blob, strings.NewReader("hello"))
	is.True(errors.IsValidation(err))

	entries, err := os.ReadDir(filepath.Join(repo.config.BasePath, "7"))
	is.NoErr(err)
	is.Equal(len(entries), 0) // partial file removed

	blob.FileSize = 10
	_, err = repo.Store(ctx, blob, strings.NewReader("hello"))
	is.True(errors.IsValidation(err))
}

func TestStoreRejectsBadExtension(t *testing.T) {
	is, ctx, repo := testSetup(t, 0)

	blob := testBlob()
	blob.Extension = "../x"
	_, err := repo.Store(ctx, blob, strings.NewReader("hello"))
	is.True(errors.IsValidation(err))
}

func TestDeleteAndMissingFiles(t *testing.T) {
	is, ctx, repo := testSetup(t, 0)

	name, err := repo.Store(ctx, testBlob(), strings.NewReader("hello"))
	is.NoErr(err)

	is.NoErr(repo.Delete(ctx, name))
	is.NoErr(repo.Delete(ctx, name)) // already gone

	_, err = repo.Open(ctx, name)
	is.True(errors.IsNotFound(err))

	_, err = repo.Open(ctx, "../../etc/passwd")
	is.True(errors.IsValidation(err))
}
