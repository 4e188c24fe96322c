package dataset

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/idiomlab/rebusbench/internal/model"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// ListImages returns the sorted full paths of all image files directly
// under dir.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: list images in %s", dir)
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

// Load pairs the images in imagesDir with the annotations table, matching
// on basename without extension ("001.png" pairs with key "001"). Images
// without an annotation are logged and skipped rather than failing the
// whole load.
func Load(imagesDir, annotationsPath string) ([]model.Sample, error) {
	annotations, err := LoadAnnotations(annotationsPath)
	if err != nil {
		return nil, err
	}

	paths, err := ListImages(imagesDir)
	if err != nil {
		return nil, err
	}

	samples := make([]model.Sample, 0, len(paths))
	for _, path := range paths {
		name := filepath.Base(path)
		key := strings.TrimSuffix(name, filepath.Ext(name))
		truth, ok := annotations[key]
		if !ok {
			zap.L().Warn("dataset: no annotation for image, skipping",
				zap.String("image", name),
			)
			continue
		}
		samples = append(samples, model.Sample{
			ImageID:     key,
			ImagePath:   path,
			GroundTruth: truth,
		})
	}
	return samples, nil
}
