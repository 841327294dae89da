package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"yt2wp/internal/fileutil"
	"yt2wp/internal/services"
	"yt2wp/internal/textutil"
)

// verifyDirectory checks that dataRoot/segment is the single directory whose
// name sanitizes to segment and that it holds at least one regular file. It
// never picks between candidates.
func verifyDirectory(dataRoot, segment string) (string, int, error) {
	expected := filepath.Join(dataRoot, segment)

	names, err := fileutil.Subdirectories(dataRoot)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expected, 0, services.Wrap(services.ErrMissingData, stepVerify, "Scan data root",
				fmt.Sprintf("data root %s does not exist", dataRoot), nil)
		}
		return expected, 0, services.Wrap(services.ErrMissingData, stepVerify, "Scan data root", dataRoot, err)
	}

	var candidates []string
	for _, name := range names {
		if textutil.SanitizeLabel(name) == segment {
			candidates = append(candidates, filepath.Join(dataRoot, name))
		}
	}

	switch {
	case len(candidates) == 0:
		return expected, 0, services.Wrap(services.ErrMissingData, stepVerify, "Locate category directory",
			fmt.Sprintf("%s does not exist", expected), nil)
	case len(candidates) > 1 || candidates[0] != expected:
		return expected, 0, services.Wrap(services.ErrAmbiguousData, stepVerify, "Locate category directory", "",
			&AmbiguousDirectoryError{Expected: expected, Candidates: candidates})
	}

	files, err := fileutil.RegularFiles(expected)
	if err != nil {
		return expected, 0, services.Wrap(services.ErrMissingData, stepVerify, "List category directory", expected, err)
	}
	if len(files) == 0 {
		return expected, 0, services.Wrap(services.ErrEmptyData, stepVerify, "List category directory",
			fmt.Sprintf("%s contains no files", expected), nil)
	}
	return expected, len(files), nil
}
