package main

import (
	"fmt"
	"io"

	"github.com/born-ml/cifar/internal/cifar"
	"github.com/born-ml/cifar/internal/format"
	"github.com/born-ml/cifar/internal/stats"
	"github.com/spf13/cobra"
)

func newInspectCmd(a *app) *cobra.Command {
	var withStats bool
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print sample counts, class histograms and channel statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := a.fetcher().Ensure(cmd.Context())
			if err != nil {
				return err
			}
			ds, err := cifar.LoadDir(dir, a.cfg.LoadOptions())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, split := range []struct {
				name  string
				batch *cifar.Batch
			}{{"train", ds.Train}, {"test", ds.Test}} {
				printHistogram(out, split.name, split.batch, ds.ClassNames)
				if !withStats {
					continue
				}
				if err := printStats(out, split.batch, a); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withStats, "stats", false, "also compute per-channel mean and std")
	return cmd
}

func printHistogram(w io.Writer, name string, b *cifar.Batch, classes []string) {
	fmt.Fprintf(w, "%s: %d samples\n", name, b.Len())
	for id, n := range b.ClassCounts() {
		fmt.Fprintf(w, "  %d %-12s %d\n", id, classes[id], n)
	}
}

func printStats(w io.Writer, b *cifar.Batch, a *app) error {
	layout := a.cfg.ImageLayout()
	images, err := format.Images(b.Pixels, b.Len(), layout, a.cfg.Parallel())
	if err != nil {
		return err
	}
	s, err := stats.ChannelStats(images, layout)
	if err != nil {
		return err
	}
	for c, name := range []string{"red", "green", "blue"} {
		fmt.Fprintf(w, "  %-5s mean=%.3f std=%.3f\n", name, s.Mean[c], s.Std[c])
	}
	return nil
}
