// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cifar10_test

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/born-ml/cifar/cifar10"
	"github.com/born-ml/cifar/internal/cifar"
	"github.com/born-ml/cifar/internal/cifar/cifartest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syntheticOptions(t *testing.T, records int) cifar10.Options {
	t.Helper()
	opts := cifar10.DefaultOptions(t.TempDir())
	opts.SourceURI = "file://" + cifartest.WriteArchive(t, records)
	opts.Checksum = ""
	opts.RecordsPerFile = records
	return opts
}

func TestLoadChannelsFirst(t *testing.T) {
	opts := syntheticOptions(t, 4)

	data, err := cifar10.Load(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, []int{20, 3, 32, 32}, []int(data.Train.Images.Shape()))
	assert.Equal(t, []int{20}, []int(data.Train.Labels.Shape()))
	assert.Equal(t, []int{4, 3, 32, 32}, []int(data.Test.Images.Shape()))
	assert.Nil(t, data.Validation)
	assert.Equal(t, cifar.DefaultClassNames, data.ClassNames)
	assert.Equal(t, filepath.Join(opts.Dir, cifar.BatchesDir), data.BatchesDir)

	// First image, first pixel is the red channel byte 0 cast to float32.
	assert.InDelta(t, float32(cifartest.Pixel(0, 0)), data.Train.Images.AsFloat32()[0], 0)
	for _, l := range data.Train.Labels.AsInt32() {
		assert.GreaterOrEqual(t, l, int32(0))
		assert.Less(t, l, int32(cifar10.NumClasses))
	}
}

func TestLoadChannelsLastOneHotScaled(t *testing.T) {
	opts := syntheticOptions(t, 2)
	opts.Layout = cifar10.ChannelsLast
	opts.OneHot = true
	opts.Scale = cifar10.ScaleUnit
	opts.ValidationRatio = 0.2
	opts.Workers = 4

	data, err := cifar10.Load(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, []int{8, 32, 32, 3}, []int(data.Train.Images.Shape()))
	assert.Equal(t, []int{8, 10}, []int(data.Train.Labels.Shape()))
	require.NotNil(t, data.Validation)
	assert.Equal(t, 2, data.Validation.Len())
	assert.Len(t, data.Splits(), 3)

	for _, v := range data.Test.Images.AsFloat32() {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}
}

func TestLoadIsIdempotent(t *testing.T) {
	opts := syntheticOptions(t, 1)
	_, err := cifar10.Load(context.Background(), opts)
	require.NoError(t, err)

	// Point at a source that no longer exists: the extracted files are reused.
	opts.SourceURI = "file:///nonexistent/cifar.tar.gz"
	_, err = cifar10.Load(context.Background(), opts)
	require.NoError(t, err)
}

func TestLoadRecordCountMismatch(t *testing.T) {
	opts := syntheticOptions(t, 2)
	opts.RecordsPerFile = 3

	_, err := cifar10.Load(context.Background(), opts)
	assert.ErrorIs(t, err, cifar10.ErrRecordCount)
}

func TestLoadChecksumMismatch(t *testing.T) {
	opts := syntheticOptions(t, 1)
	opts.Checksum = cifar10.DefaultChecksum

	_, err := cifar10.Load(context.Background(), opts)
	assert.ErrorIs(t, err, cifar10.ErrChecksumMismatch)
}

func TestPrepareTwoSampleOneHot(t *testing.T) {
	ds := &cifar10.Dataset{
		Train: cifartest.NewBatch(3, 7),
		Test:  cifartest.NewBatch(3, 7),
	}
	opts := cifar10.DefaultOptions("")
	opts.OneHot = true

	data, err := cifar10.Prepare(ds, opts)
	require.NoError(t, err)

	labels := data.Train.Labels
	require.Equal(t, []int{2, 10}, []int(labels.Shape()))
	want := make([]int32, 20)
	want[3] = 1
	want[10+7] = 1
	assert.Equal(t, want, labels.AsInt32())

	ids, err := cifar10.ArgMax(labels)
	require.NoError(t, err)
	assert.Equal(t, []int32{3, 7}, ids)
}

func TestFlattenRoundTrip(t *testing.T) {
	b := cifartest.NewBatch(1, 2, 3)
	ds := &cifar10.Dataset{Train: b, Test: b}
	opts := cifar10.DefaultOptions("")
	opts.Layout = cifar10.ChannelsLast

	data, err := cifar10.Prepare(ds, opts)
	require.NoError(t, err)

	flat, err := cifar10.Flatten(data.Train.Images, cifar10.ChannelsLast)
	require.NoError(t, err)
	require.Len(t, flat, len(b.Pixels))
	for i, p := range b.Pixels {
		require.InDelta(t, float32(p), flat[i], 0, "pixel %d", i)
	}

	first, err := cifar10.ConvertLayout(data.Train.Images, cifar10.ChannelsLast, cifar10.ChannelsFirst)
	require.NoError(t, err)
	back, err := cifar10.ConvertLayout(first, cifar10.ChannelsFirst, cifar10.ChannelsLast)
	require.NoError(t, err)
	assert.Equal(t, data.Train.Images.AsFloat32(), back.AsFloat32())
}

func TestExportAndBatches(t *testing.T) {
	ds := &cifar10.Dataset{Train: cifartest.NewBatch(0, 1, 2, 3, 4), Test: cifartest.NewBatch(5)}
	data, err := cifar10.Prepare(ds, cifar10.DefaultOptions(""))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "cifar.safetensors")
	require.NoError(t, data.Export(path, nil))

	splits, meta, err := cifar10.ReadExport(path)
	require.NoError(t, err)
	assert.Equal(t, "first", meta["layout"])
	assert.Equal(t, data.Train.Labels.AsInt32(), splits["train"].Labels.AsInt32())

	batches, err := cifar10.NewBatches(splits["train"], cifar10.BatchOptions{Size: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, batches.NumBatches())

	seen := 0
	for b, err := range batches.Epoch(0) {
		require.NoError(t, err)
		seen += b.Len()
	}
	assert.Equal(t, 5, seen)
}

func TestValidationRatioRange(t *testing.T) {
	ds := &cifar10.Dataset{Train: cifartest.NewBatch(0, 1, 2, 3), Test: cifartest.NewBatch(4)}

	tests := []struct {
		name    string
		ratio   float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"quarter", 0.25, false},
		{"negative", -0.1, true},
		{"one", 1, true},
		{"above one", 1.5, true},
		{"nan", math.NaN(), true},
		{"empties train", 0.9, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := cifar10.DefaultOptions("")
			opts.ValidationRatio = tt.ratio

			data, err := cifar10.Prepare(ds, opts)
			if tt.wantErr {
				assert.ErrorIs(t, err, cifar10.ErrValidationRatio)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 4, data.Train.Len()+lenOf(data.Validation))
		})
	}
}

func TestLoadRejectsRatioBeforeFetch(t *testing.T) {
	opts := cifar10.DefaultOptions(t.TempDir())
	opts.SourceURI = "file:///nonexistent/cifar.tar.gz"
	opts.ValidationRatio = 1

	_, err := cifar10.Load(context.Background(), opts)
	assert.ErrorIs(t, err, cifar10.ErrValidationRatio)
}

func TestExportRejectsConflictingLayout(t *testing.T) {
	ds := &cifar10.Dataset{Train: cifartest.NewBatch(0, 1), Test: cifartest.NewBatch(2)}
	opts := cifar10.DefaultOptions("")
	opts.Layout = cifar10.ChannelsLast
	data, err := cifar10.Prepare(ds, opts)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "cifar.safetensors")
	err = data.Export(path, map[string]string{"layout": "first"})
	assert.ErrorIs(t, err, cifar10.ErrLayout)
}

func TestClassIDs(t *testing.T) {
	ds := &cifar10.Dataset{Train: cifartest.NewBatch(3, 7), Test: cifartest.NewBatch(1)}
	for _, oneHot := range []bool{false, true} {
		opts := cifar10.DefaultOptions("")
		opts.OneHot = oneHot
		data, err := cifar10.Prepare(ds, opts)
		require.NoError(t, err)

		ids, err := cifar10.ClassIDs(data.Train.Labels)
		require.NoError(t, err)
		assert.Equal(t, []int32{3, 7}, ids, "one-hot=%v", oneHot)
	}
}

func lenOf(p *cifar10.Prepared) int {
	if p == nil {
		return 0
	}
	return p.Len()
}
