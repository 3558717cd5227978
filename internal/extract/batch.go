package extract

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fairwaylabs/shotlens/internal/model"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// ListImages returns the image files directly under dir, sorted by
// name.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: read dir %s", dir)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// ExtractDir processes every image in dir with bounded concurrency.
// Results come back in directory order regardless of completion order.
// One unreadable image fails the batch; recognition trouble inside an
// image does not.
func (e *Extractor) ExtractDir(ctx context.Context, dir string, concurrency int) ([]model.Extraction, error) {
	paths, err := ListImages(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, eris.Errorf("extract: no images in %s", dir)
	}
	if concurrency <= 0 {
		concurrency = 4
	}

	// Each goroutine writes its own slot, so no locking is needed.
	results := make([]model.Extraction, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range paths {
		g.Go(func() error {
			ex, err := e.Extract(ctx, path)
			if err != nil {
				return err
			}
			results[i] = ex

			zap.L().Info("extract: image processed",
				zap.String("image", filepath.Base(path)),
				zap.Int("fields_found", countFound(ex.Fields)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func countFound(fields []model.ResolvedField) int {
	n := 0
	for _, f := range fields {
		if f.Found {
			n++
		}
	}
	return n
}
