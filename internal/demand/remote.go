package demand

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/andresuchdata/replenish/internal/drive"
	"github.com/andresuchdata/replenish/internal/storage"
	"github.com/rs/zerolog/log"
)

// ObjectSource parses one CSV object from an S3-compatible bucket.
type ObjectSource struct {
	lazyTable
	key string
}

func NewObjectSource(store storage.ObjectStorage, key string, opts CSVOptions) *ObjectSource {
	s := &ObjectSource{key: key}
	s.load = func(ctx context.Context) (*Table, error) {
		data, err := store.ReadObject(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrDataUnavailable, err)
		}
		log.Info().Str("key", key).Int("bytes", len(data)).Msg("demand object fetched")
		return ParseCSV(bytes.NewReader(data), opts)
	}
	return s
}

const driveFolderMimeType = "application/vnd.google-apps.folder"

// DriveFiles looks up and streams a remote file by id.
type DriveFiles interface {
	Stat(ctx context.Context, fileID string) (*drive.File, error)
	DownloadFile(ctx context.Context, fileID string, w io.Writer) error
}

// DriveSource parses one CSV file stored in Google Drive.
type DriveSource struct {
	lazyTable
	fileID string
}

func NewDriveSource(files DriveFiles, fileID string, opts CSVOptions) *DriveSource {
	s := &DriveSource{fileID: fileID}
	s.load = func(ctx context.Context) (*Table, error) {
		if fileID == "" {
			return nil, fmt.Errorf("%w: drive file id not configured", domain.ErrDataUnavailable)
		}

		meta, err := files.Stat(ctx, fileID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrDataUnavailable, err)
		}
		if meta.MimeType == driveFolderMimeType {
			return nil, domain.InvalidInputf("drive id %s is a folder, not a demand file", fileID)
		}
		log.Info().
			Str("file_id", fileID).
			Str("name", meta.Name).
			Str("modified", meta.ModifiedTime).
			Int64("bytes", meta.Size).
			Msg("downloading demand file from drive")

		pr, pw := io.Pipe()
		go func() {
			pw.CloseWithError(files.DownloadFile(ctx, fileID, pw))
		}()
		defer pr.Close()

		table, err := ParseCSV(pr, opts)
		if err != nil && !errors.Is(err, domain.ErrInvalidInput) {
			return nil, fmt.Errorf("%w: %v", domain.ErrDataUnavailable, err)
		}
		return table, err
	}
	return s
}
