// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cifar10 downloads, decodes and prepares the CIFAR-10 image dataset
// as float32 image tensors and int32 label tensors.
//
// Example usage:
//
//	import "github.com/born-ml/cifar/cifar10"
//
//	opts := cifar10.DefaultOptions("data")
//	opts.Layout = cifar10.ChannelsLast
//	opts.OneHot = true
//
//	data, err := cifar10.Load(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(data.Train.Images.Shape()) // [50000 32 32 3]
//	fmt.Println(data.Train.Labels.Shape()) // [50000 10]
//
// Pixels are cast to float32 without normalization by default; set Scale to
// ScaleUnit or ScaleStandardize to rescale them. Standardization uses the
// per-channel statistics of the training split for every split.
//
// The archive is fetched from Options.SourceURI, which may be an http(s),
// s3://bucket/key, gs://bucket/object or file:// URI. Loading is idempotent:
// once the batch files are extracted under Options.Dir nothing is downloaded.
package cifar10
