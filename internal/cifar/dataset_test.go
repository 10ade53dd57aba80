package cifar_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/cifar/internal/cifar"
	"github.com/born-ml/cifar/internal/cifar/cifartest"
)

func TestLoadDirConcatenatesTrainBatches(t *testing.T) {
	dir := t.TempDir()
	cifartest.WriteDir(t, dir, 4)

	ds, err := cifar.LoadDir(dir, cifar.LoadOptions{RecordsPerFile: 4})
	require.NoError(t, err)

	assert.Equal(t, 20, ds.Train.Len())
	assert.Equal(t, 4, ds.Test.Len())
	assert.Len(t, ds.Train.Pixels, 20*cifar.PixelsPerImage)
	assert.Equal(t, cifar.DefaultClassNames, ds.ClassNames)

	// data_batch_2 starts with label offset 1.
	assert.Equal(t, uint8(1), ds.Train.Labels[4])
	// test_batch is written last with offset 5.
	assert.Equal(t, uint8(5), ds.Test.Labels[0])
}

func TestLoadDirRecordCount(t *testing.T) {
	dir := t.TempDir()
	cifartest.WriteDir(t, dir, 3)

	_, err := cifar.LoadDir(dir, cifar.LoadOptions{RecordsPerFile: cifar.RecordsPerFile})
	assert.ErrorIs(t, err, cifar.ErrRecordCount)

	ds, err := cifar.LoadDir(dir, cifar.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 15, ds.Train.Len())
}

func TestLoadDirMissingFile(t *testing.T) {
	dir := t.TempDir()
	cifartest.WriteDir(t, dir, 2)
	require.NoError(t, os.Remove(filepath.Join(dir, "data_batch_3.bin")))

	_, err := cifar.LoadDir(dir, cifar.LoadOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "data_batch_3.bin")

	assert.Equal(t, []string{"data_batch_3.bin"}, cifar.MissingFiles(dir))
}

func TestLoadDirClassNames(t *testing.T) {
	dir := t.TempDir()
	cifartest.WriteDir(t, dir, 1)

	names := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	meta := strings.Join(names, "\n") + "\n\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, cifar.MetaFile), []byte(meta), 0o600))

	ds, err := cifar.LoadDir(dir, cifar.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, names, ds.ClassNames)

	require.NoError(t, os.WriteFile(filepath.Join(dir, cifar.MetaFile), []byte("a\nb\n"), 0o600))
	_, err = cifar.LoadDir(dir, cifar.LoadOptions{})
	assert.ErrorIs(t, err, cifar.ErrClassNames)
}
