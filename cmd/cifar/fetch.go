package main

import (
	"fmt"

	"github.com/born-ml/cifar/internal/fetch"
	"github.com/spf13/cobra"
)

func newFetchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Download and extract the archive if it is not present",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := a.fetcher()
			dir, err := f.Ensure(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

func (a *app) fetcher() *fetch.Fetcher {
	return &fetch.Fetcher{
		Dir:       a.cfg.DataDir,
		SourceURI: a.cfg.SourceURI,
		Checksum:  a.cfg.Checksum,
		Providers: make(map[fetch.Protocol]fetch.Provider),
		Options:   a.cfg.ProviderOptions(),
		Logger:    a.log,
	}
}
