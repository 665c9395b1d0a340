package backend

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/alnah/go-wikipub"
	"github.com/alnah/go-wikipub/internal/fileutil"
)

// imageStore downloads image files into one directory.
type imageStore struct {
	backendName string
	dir         string
	downloader  Downloader
	report      wikipub.Reporter
}

// store downloads file into the image directory. Files without a URL, and
// stores without a downloader, are skipped.
func (s *imageStore) store(ctx context.Context, file wikipub.FileInfo) error {
	if s.downloader == nil || file.URL == "" {
		return nil
	}
	if err := validateFilename(file.Filename); err != nil {
		return err
	}

	s.report.Report(wikipub.Diagnostic{
		Severity: wikipub.SeverityNotice,
		Message:  s.backendName + ": Downloading image: " + file.Filename,
	})

	dest := filepath.Join(s.dir, file.Filename)
	err := fileutil.WriteAtomic(dest, func(w io.Writer) error {
		return s.downloader.Download(ctx, file.URL, w)
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrImageDownload, file.Filename, err)
	}
	return nil
}
