package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeTestImages(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("img"), 0o644))
	}
	return dir
}

func writeTestCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "annotations.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestListImages(t *testing.T) {
	dir := writeTestImages(t, "002.png", "001.png", "003.JPG", "notes.txt", "004.jpeg")

	paths, err := ListImages(dir)
	require.NoError(t, err)
	require.Len(t, paths, 4)

	// Sorted, non-images excluded, extension match case-insensitive.
	assert.Equal(t, "001.png", filepath.Base(paths[0]))
	assert.Equal(t, "002.png", filepath.Base(paths[1]))
	assert.Equal(t, "003.JPG", filepath.Base(paths[2]))
	assert.Equal(t, "004.jpeg", filepath.Base(paths[3]))
}

func TestLoadAnnotationsCSV(t *testing.T) {
	path := writeTestCSV(t, "Filename,Solution\n001.png,kick the bucket\n002.png,spill the beans\n003.png,\n,orphan\n")

	annotations, err := LoadAnnotations(path)
	require.NoError(t, err)

	assert.Len(t, annotations, 2)
	assert.Equal(t, "kick the bucket", annotations["001"])
	assert.Equal(t, "spill the beans", annotations["002"])
}

func TestLoadAnnotationsCSVKeysWithoutExtension(t *testing.T) {
	path := writeTestCSV(t, "filename,solution\n001,break the ice\n")

	annotations, err := LoadAnnotations(path)
	require.NoError(t, err)
	assert.Equal(t, "break the ice", annotations["001"])
}

func TestLoadAnnotationsMissingColumns(t *testing.T) {
	path := writeTestCSV(t, "image,answer\n001.png,kick the bucket\n")

	_, err := LoadAnnotations(path)
	assert.Error(t, err)
}

func TestLoadAnnotationsXLSX(t *testing.T) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("annotations")
	require.NoError(t, err)
	for _, rowData := range [][]string{
		{"filename", "solution"},
		{"001.png", "a drop in the bucket"},
		{"002.png", "under the weather"},
	} {
		row := sheet.AddRow()
		for _, cell := range rowData {
			row.AddCell().SetString(cell)
		}
	}
	path := filepath.Join(t.TempDir(), "annotations.xlsx")
	require.NoError(t, f.Save(path))

	annotations, err := LoadAnnotations(path)
	require.NoError(t, err)

	assert.Len(t, annotations, 2)
	assert.Equal(t, "a drop in the bucket", annotations["001"])
	assert.Equal(t, "under the weather", annotations["002"])
}

func TestLoadPairsImagesWithAnnotations(t *testing.T) {
	imagesDir := writeTestImages(t, "001.png", "002.jpg", "099.png")
	annotationsPath := writeTestCSV(t, "filename,solution\n001.png,kick the bucket\n002.jpg,spill the beans\n")

	samples, err := Load(imagesDir, annotationsPath)
	require.NoError(t, err)

	// 099.png has no annotation and is skipped.
	require.Len(t, samples, 2)
	assert.Equal(t, "001", samples[0].ImageID)
	assert.Equal(t, "kick the bucket", samples[0].GroundTruth)
	assert.Equal(t, filepath.Join(imagesDir, "001.png"), samples[0].ImagePath)
	assert.Equal(t, "002", samples[1].ImageID)
}

func TestLoadMissingImagesDir(t *testing.T) {
	annotationsPath := writeTestCSV(t, "filename,solution\n001.png,x y z\n")

	_, err := Load(filepath.Join(t.TempDir(), "missing"), annotationsPath)
	assert.Error(t, err)
}
