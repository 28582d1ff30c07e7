package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/roadmap/pkg/cache"
	"github.com/matzehuels/roadmap/pkg/config"
	errs "github.com/matzehuels/roadmap/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout and render cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached layout, artifact and analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg.Cache
			switch cfg.Backend {
			case config.BackendNone:
				printInfo("Caching is disabled")
				return nil
			case config.BackendRedis:
				return errs.New(errs.ErrCodeUnsupported, "clearing a shared redis cache is not supported; entries expire on their own")
			}

			dir, err := backendDir(cfg)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			if cfg.Backend == config.BackendBadger {
				if err := os.RemoveAll(dir); err != nil {
					return fmt.Errorf("remove badger cache: %w", err)
				}
				printSuccess("Removed badger cache")
				printDetail("Directory: %s", dir)
				return nil
			}

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			count, err := fc.Clear()
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Cleared %d cached %s", count, plural(count, "entry", "entries"))
			printDetail("Directory: %s", dir)
			return nil
		},
	}
	cmd.Flags().String("cache-backend", "", "cache backend: file, badger, redis, none")
	cmd.Flags().String("cache-dir", "", "cache directory")
	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Cache.Backend == config.BackendRedis {
				fmt.Println("redis://" + c.cfg.Cache.Redis.Addr)
				return nil
			}
			dir, err := backendDir(c.cfg.Cache)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}
