package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/atango/internal/config"
	"github.com/kailas-cloud/atango/internal/db"
	dbRedis "github.com/kailas-cloud/atango/internal/db/redis"
	logpkg "github.com/kailas-cloud/atango/internal/logger"
)

type rootOptions struct {
	env        string
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "atangoctl",
		Short:         "Operate the atango reply bot",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "config environment (config/<env>.yaml)")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "explicit config file, overrides --env")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn, error")

	cmd.AddCommand(
		newAskCmd(opts),
		newIndexCmd(opts),
		newSeedCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func (o *rootOptions) load() (config.Config, error) {
	if o.configPath != "" {
		return config.LoadFile(o.configPath)
	}
	return config.Load(o.env)
}

func (o *rootOptions) logger(cfg config.Config) (*zap.Logger, error) {
	level := cfg.Logging.Level
	if o.logLevel != "" {
		level = o.logLevel
	}
	env := o.env
	if env == "" {
		env = "local"
	}
	return logpkg.NewLogger(env, level)
}

// redisStore opens the Redis backend. Index management and seeding only exist there.
func redisStore(cfg config.SearchConfig) (db.Store, error) {
	if cfg.Driver != config.DriverRedis {
		return nil, fmt.Errorf("search.driver is %q: index management requires %q", cfg.Driver, config.DriverRedis)
	}
	s, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Addrs,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}
