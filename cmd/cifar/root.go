package main

import (
	"github.com/born-ml/cifar/internal/config"
	"github.com/born-ml/cifar/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const version = "v0.1.0"

// app carries state shared by every subcommand.
type app struct {
	overrides config.Overrides
	dev       bool

	cfg *config.Config
	log *zap.SugaredLogger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "cifar",
		Short: "Fetch and prepare the CIFAR-10 dataset",
		Long: `cifar downloads the CIFAR-10 binary archive, decodes its batch files and
converts them into float32 image tensors and int32 label tensors.

Settings come from CIFAR_* environment variables (CIFAR_DATA_DIR,
CIFAR_SOURCE_URI, CIFAR_LAYOUT, ...) and are overridden by flags.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Flags())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	bindFlags(root.PersistentFlags(), &a.overrides)
	root.PersistentFlags().BoolVar(&a.dev, "dev", false, "human-readable development logging")

	root.AddCommand(
		newFetchCmd(a),
		newPrepareCmd(a),
		newInspectCmd(a),
		newVersionCmd(),
	)
	return root
}

// bindFlags registers the config overrides on fs.
func bindFlags(fs *pflag.FlagSet, o *config.Overrides) {
	fs.StringVarP(&o.DataDir, "data-dir", "d", "", "directory receiving the archive and its extraction")
	fs.StringVar(&o.SourceURI, "source", "", "archive URI (http(s)://, s3://, gs://, file://)")
	fs.String("checksum", "", "expected MD5 of the archive; empty disables the check")
	fs.StringVarP(&o.Layout, "layout", "l", "", "image layout: first or last")
	fs.Bool("one-hot", false, "encode labels as one-hot rows")
	fs.StringVar(&o.Scale, "scale", "", "pixel scaling: none, unit or standardize")
	fs.Int("records-per-file", 0, "exact records per batch file; 0 disables the check")
	fs.IntVarP(&o.Workers, "workers", "w", 0, "parallel workers for per-sample work")
	fs.StringVar(&o.LogLevel, "log-level", "", "log level: debug, info, warn, error")
}

// collectChanged copies flags without a usable zero value into o.
func collectChanged(fs *pflag.FlagSet, o *config.Overrides) error {
	if fs.Changed("checksum") {
		v, err := fs.GetString("checksum")
		if err != nil {
			return err
		}
		o.Checksum = &v
	}
	if fs.Changed("one-hot") {
		v, err := fs.GetBool("one-hot")
		if err != nil {
			return err
		}
		o.OneHot = &v
	}
	if fs.Changed("records-per-file") {
		v, err := fs.GetInt("records-per-file")
		if err != nil {
			return err
		}
		o.RecordsPerFile = &v
	}
	return nil
}

func (a *app) setup(fs *pflag.FlagSet) error {
	if err := collectChanged(fs, &a.overrides); err != nil {
		return err
	}
	cfg, err := config.Resolve(a.overrides)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, a.dev)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	return nil
}
