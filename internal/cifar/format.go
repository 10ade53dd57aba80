// Package cifar decodes the CIFAR-10 binary batch files.
//
// Each batch file is a sequence of fixed-size records:
//
//	[1 byte: label 0-9]
//	[1024 bytes: red plane, row-major 32x32]
//	[1024 bytes: green plane]
//	[1024 bytes: blue plane]
//
// The extracted archive holds five training batches and one test batch of
// 10000 records each, plus batches.meta.txt with one class name per line.
package cifar

// Record layout constants.
const (
	Height         = 32
	Width          = 32
	Channels       = 3
	PlaneSize      = Height * Width
	PixelsPerImage = Channels * PlaneSize // 3072
	RecordSize     = 1 + PixelsPerImage   // 3073
	NumClasses     = 10
)

// Published split sizes.
const (
	RecordsPerFile = 10000
	TrainSamples   = 50000
	TestSamples    = 10000
)

// File names inside the extracted archive.
const (
	BatchesDir    = "cifar-10-batches-bin"
	TestBatchFile = "test_batch.bin"
	MetaFile      = "batches.meta.txt"
)

// TrainBatchFiles lists the training batch files in load order.
var TrainBatchFiles = []string{
	"data_batch_1.bin",
	"data_batch_2.bin",
	"data_batch_3.bin",
	"data_batch_4.bin",
	"data_batch_5.bin",
}

// BatchFiles returns every batch file name the loader expects, train first.
func BatchFiles() []string {
	return append(append([]string(nil), TrainBatchFiles...), TestBatchFile)
}

// DefaultClassNames are the published class names, indexed by label.
var DefaultClassNames = []string{
	"airplane", "automobile", "bird", "cat", "deer",
	"dog", "frog", "horse", "ship", "truck",
}
