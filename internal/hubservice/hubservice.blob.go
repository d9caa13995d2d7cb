package hubservice

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/itsatony/rahub/internal/errors"
	"github.com/itsatony/rahub/internal/models"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const downloadDateFormat = "20060102_150405"

// BlobDownload is a stored blob ready to be streamed to the operator.
// The caller closes Body.
type BlobDownload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

func (s *HubService) ListBlobs(ctx context.Context, id int64) ([]*models.Blob, error) {
	if _, _, err := s.loadOwnedDevice(ctx, id); err != nil {
		return nil, err
	}
	return s.Devices.ListBlobs(ctx, id)
}

// GetBlobDownload opens a stored blob of the device. Blobs whose payload
// never arrived are reported as not found.
func (s *HubService) GetBlobDownload(ctx context.Context, id, blobID int64) (*BlobDownload, error) {
	if _, _, err := s.loadOwnedDevice(ctx, id); err != nil {
		return nil, err
	}

	blob, err := s.Devices.GetBlob(ctx, id, blobID)
	if err != nil {
		return nil, err
	}
	if blob.Status != models.BlobStored || blob.FileName == nil {
		return nil, errors.NewNotFoundError("blob payload not stored", nil)
	}

	body, err := s.Files.Open(ctx, *blob.FileName)
	if err != nil {
		return nil, err
	}

	return &BlobDownload{
		FileName:    downloadFileName(blob),
		ContentType: contentType(blob.Extension),
		Size:        blob.FileSize,
		Body:        body,
	}, nil
}

func downloadFileName(blob *models.Blob) string {
	return fmt.Sprintf("%s_%d_%s.%s",
		blob.DataTime.Format(downloadDateFormat),
		blob.DeviceID,
		webalize(blob.Description, "._"),
		blob.Extension,
	)
}

func contentType(extension string) string {
	switch extension {
	case "csv":
		return "text/csv"
	case "jpg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}

// webalize turns s into a lower case ASCII slug. Characters in keep survive,
// every other run of non-alphanumerics becomes a single dash.
func webalize(s, keep string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, err := transform.String(stripMarks, s)
	if err != nil {
		ascii = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(ascii) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), strings.ContainsRune(keep, r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
