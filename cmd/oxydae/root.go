package main

import (
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-collada/engine/loader"
	"github.com/Carmen-Shannon/oxy-collada/engine/profiler"
	"github.com/Carmen-Shannon/oxy-collada/engine/scene"
	"github.com/spf13/cobra"
)

// cli carries the resolved configuration shared by all subcommands.
type cli struct {
	cfg        config
	configPath string

	filePath string
	workers  int
	logLevel string
	catalog  string
	profile  bool
}

func newRootCmd() *cobra.Command {
	c := &cli{cfg: defaultConfig()}

	root := &cobra.Command{
		Use:           "oxydae",
		Short:         "Inspect, query and index COLLADA documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.resolve(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "Path to a TOML config file")
	flags.StringVar(&c.filePath, "file-path", "", "Base path prefixed to document urls without a scheme")
	flags.IntVarP(&c.workers, "workers", "w", 0, "Number of concurrent loads")
	flags.StringVar(&c.logLevel, "log-level", "", "Log level: warn, error or silent")
	flags.StringVar(&c.catalog, "catalog", "", "Path to the SQLite scene catalog")
	flags.BoolVar(&c.profile, "profile", false, "Log load throughput and memory statistics to stderr")

	root.AddCommand(
		newInspectCmd(c),
		newQueryCmd(c),
		newIndexCmd(c),
		newValidateCmd(c),
	)
	return root
}

// resolve loads the config file, then applies explicitly set flags over it.
func (c *cli) resolve(cmd *cobra.Command) error {
	if c.configPath != "" {
		cfg, err := loadConfig(c.configPath)
		if err != nil {
			return err
		}
		c.cfg = cfg
	}

	flags := cmd.Flags()
	if flags.Changed("file-path") {
		c.cfg.FilePath = c.filePath
	}
	if flags.Changed("workers") {
		c.cfg.Workers = c.workers
	}
	if flags.Changed("log-level") {
		c.cfg.LogLevel = c.logLevel
	}
	if flags.Changed("catalog") {
		c.cfg.Catalog = c.catalog
	}
	return c.cfg.validate()
}

func (c *cli) newLoader(cmd *cobra.Command) loader.Loader {
	return loader.NewLoader(
		loader.WithFilePath(c.cfg.FilePath),
		loader.WithWorkers(c.cfg.Workers),
		loader.WithLogger(c.cfg.newLogger(cmd.ErrOrStderr())),
	)
}

// loadAll loads a batch of urls. With --profile set, every completed load is fed to a
// profiler and a summary is logged once the batch finishes.
func (c *cli) loadAll(cmd *cobra.Command, l loader.Loader, urls []string) []loader.LoadResult {
	if !c.profile {
		return l.LoadAll(cmd.Context(), urls)
	}

	p := profiler.NewProfiler(log.New(cmd.ErrOrStderr(), "", 0))
	results := make([]loader.LoadResult, len(urls))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		l.Load(cmd.Context(), url, func(s scene.Scene, err error) {
			defer wg.Done()
			results[i] = loader.LoadResult{URL: url, Scene: s, Err: err}
			mu.Lock()
			p.Tick(err != nil)
			mu.Unlock()
		})
	}
	wg.Wait()
	p.Report()
	return results
}
