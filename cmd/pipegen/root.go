package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/pipegen/config"
	"github.com/kbukum/pipegen/logger"
)

// rootOptions are the persistent flags and the configuration they resolve to.
type rootOptions struct {
	configFile string
	envFile    string
	url        string
	prefix     string
	store      string
	logLevel   string

	cfg config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "pipegen",
		Short: "Generate microflows that call data pipelines",
		Long: `pipegen discovers the pipelines a Swagger-described service publishes and
generates microflows that call them. Use it from the command line or run
"pipegen serve" to drive it over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.configFile, "config", "", "config file (default searches ./config.yml, ./config/config.yml and ~/.pipegen/config.yml)")
	f.StringVar(&opts.envFile, "env-file", "", ".env file to load before reading PIPEGEN_* variables")
	f.StringVar(&opts.url, "url", "", "root URL of the pipeline service (overrides catalog.url)")
	f.StringVar(&opts.prefix, "prefix", "", "microflow name prefix (overrides generator.prefix)")
	f.StringVar(&opts.store, "store", "", "workspace store: memory, sqlite or redis (overrides store.driver)")
	f.StringVar(&opts.logLevel, "log-level", "", "log level (overrides logging.level)")

	cmd.AddCommand(
		newServeCmd(opts),
		newPipelinesCmd(opts),
		newGenerateCmd(opts),
		newExistingCmd(opts),
		newModulesCmd(opts),
		newOpenCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// load reads the configuration, applies flag overrides and initializes the
// global logger.
func (o *rootOptions) load() error {
	var loaderOpts []config.LoaderOption
	if o.configFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(o.configFile))
	}
	if o.envFile != "" {
		loaderOpts = append(loaderOpts, config.WithEnvFile(o.envFile))
	}
	if err := config.Load(&o.cfg, loaderOpts...); err != nil {
		return err
	}

	if o.url != "" {
		o.cfg.Catalog.URL = o.url
	}
	if o.prefix != "" {
		o.cfg.Generator.Prefix = o.prefix
	}
	if o.store != "" {
		o.cfg.Store.Driver = o.store
	}
	if o.logLevel != "" {
		o.cfg.Logging.Level = o.logLevel
	}
	if err := o.cfg.Validate(); err != nil {
		return err
	}

	logger.Init(o.cfg.Logging)
	logger.Register(o.cfg.Name, logger.GetGlobalLogger())
	return nil
}
