package main

import (
	"fmt"
	"io"
	"time"

	"github.com/mwengren/kuberr/internal/config"
	"github.com/mwengren/kuberr/internal/content"
	"github.com/mwengren/kuberr/internal/erddap"
	"github.com/mwengren/kuberr/internal/k8s"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const description = `erddap-config performs a few small orchestration tasks to deploy ERDDAP
pods and other resources on Kubernetes. Execute different tasks by passing an
-a|--action parameter.`

// deps are the collaborators the command is wired with.
type deps struct {
	viper      *viper.Viper
	newClient  func(opts *k8s.Options) (k8s.Client, error)
	newFetcher func(cfg *config.Config) content.Fetcher
}

func defaultDeps() *deps {
	return &deps{
		viper: config.NewViper(),
		newClient: func(opts *k8s.Options) (k8s.Client, error) {
			client, err := k8s.New(opts)
			if err != nil {
				return nil, err
			}

			logrus.Debugf("Using credentials from %s", client.Source)

			return client, nil
		},
		newFetcher: func(cfg *config.Config) content.Fetcher {
			return content.NewHTTPFetcher(cfg.ContentURL, cfg.ERDDAPVersion)
		},
	}
}

type options struct {
	action         string
	kubeconfig     string
	kubeContext    string
	dryRun         bool
	logLevel       string
	requestTimeout time.Duration
}

func (o *options) addFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&o.action, "action", "a", "",
		fmt.Sprintf("Config action to execute. Implemented actions: %s", erddap.ValidActionNames()))
	flags.StringVar(&o.kubeconfig, "kubeconfig", "",
		"Path to a kubeconfig file. In-cluster credentials are used when empty and available.")
	flags.StringVar(&o.kubeContext, "context", "", "Kubeconfig context to use.")
	flags.BoolVar(&o.dryRun, "dry-run", false, "Send requests with server-side dry run; nothing is persisted.")
	flags.StringVar(&o.logLevel, "log-level", "info", "Log level (debug, info, warn, error).")
	flags.DurationVar(&o.requestTimeout, "request-timeout", 0, "Timeout of a single API request. Zero means no timeout.")
}

func newRootCommand(d *deps) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "erddap-config",
		Short: "Configure ERDDAP ConfigMaps on Kubernetes",
		Long:  description,
		Args:  cobra.NoArgs,
		// Errors are reported once by main.
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, d, opts)
		},
	}

	opts.addFlags(cmd.Flags())
	_ = cmd.MarkFlagRequired("action")

	return cmd
}

func newLogger(out io.Writer, level string) (*logrus.Entry, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: false,
		FullTimestamp:    true,
		TimestampFormat:  "2006-01-02T15:04:05Z07:00",
	})

	logrus.SetLevel(lvl)

	return logrus.NewEntry(logger), nil
}

func run(cmd *cobra.Command, d *deps, opts *options) error {
	action, err := erddap.ParseAction(opts.action)
	if err != nil {
		return err
	}

	log, err := newLogger(cmd.ErrOrStderr(), opts.logLevel)
	if err != nil {
		return err
	}

	log = log.WithField("action", action)

	cfg, err := config.Load(d.viper)
	if err != nil {
		return err
	}

	if log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		dump, dumpErr := cfg.Dump()
		if dumpErr == nil {
			log.Debugf("config:\n%s", dump)
		}
	}

	client, err := d.newClient(&k8s.Options{
		Namespace:  cfg.Namespace(),
		Kubeconfig: opts.kubeconfig,
		Context:    opts.kubeContext,
		DryRun:     opts.dryRun,
		Timeout:    opts.requestTimeout,
	})
	if err != nil {
		return fmt.Errorf("could not create k8s client: %w", err)
	}

	if opts.dryRun {
		log.Warnf("Dry run: changes are not persisted")
	}

	runner := &erddap.Runner{
		Config:  cfg,
		K8s:     client,
		Fetcher: d.newFetcher(cfg),
		Log:     log,
	}

	return runner.Run(cmd.Context(), action)
}
