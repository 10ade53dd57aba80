package main

import (
	"fmt"
	"path/filepath"

	"github.com/born-ml/cifar/cifar10"
	"github.com/spf13/cobra"
)

func newPrepareCmd(a *app) *cobra.Command {
	var (
		output     string
		validation float64
	)
	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Fetch, decode and adapt the dataset, then export it as safetensors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cifar10.CheckValidationRatio(validation); err != nil {
				return err
			}
			opts := a.options()
			opts.ValidationRatio = validation

			data, err := cifar10.Load(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if output == "" {
				output = filepath.Join(a.cfg.DataDir, "cifar10.safetensors")
			}
			meta := map[string]string{
				"source":  a.cfg.SourceURI,
				"scale":   opts.Scale.String(),
				"one_hot": fmt.Sprint(opts.OneHot),
			}
			if err := data.Export(output, meta); err != nil {
				return err
			}
			a.log.Infow("exported dataset", "path", output,
				"train", data.Train.Len(), "test", data.Test.Len(),
				"train_bytes", data.Train.Images.ByteSize())
			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "safetensors output path (default <data-dir>/cifar10.safetensors)")
	cmd.Flags().Float64Var(&validation, "validation", 0, "fraction of the train split to hold out")
	return cmd
}

func (a *app) options() cifar10.Options {
	return cifar10.Options{
		Dir:             a.cfg.DataDir,
		SourceURI:       a.cfg.SourceURI,
		Checksum:        a.cfg.Checksum,
		Layout:          a.cfg.ImageLayout(),
		OneHot:          a.cfg.OneHot,
		Scale:           a.cfg.ScaleMode(),
		RecordsPerFile:  a.cfg.RecordsPerFile,
		Workers:         a.cfg.Workers,
		ProviderOptions: a.cfg.ProviderOptions(),
		Logger:          a.log,
	}
}
