package cli

import (
	"context"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/godswood/internal/server"
	"github.com/matzehuels/godswood/pkg/cache"
	"github.com/matzehuels/godswood/pkg/observability"
)

type serveOpts struct {
	layoutFlags
	addr      string // overrides server.addr
	redisAddr string // overrides cache.redis_addr
}

// serveCommand starts the HTTP API, optionally preloading documents.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve [FILE...]",
		Short: "Serve trees over HTTP",
		Long: `Serve starts the query API. Documents given as arguments are built before
the server starts listening; more can be added with POST /trees.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), cmd.InOrStdin(), args, opts)
		},
	}

	opts.layoutFlags.register(cmd)
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "redis address for the layout cache (default from config, disabled)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, stdin io.Reader, paths []string, opts serveOpts) error {
	cfg := *c.cfg
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	if opts.redisAddr != "" {
		cfg.Cache.RedisAddr = opts.redisAddr
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	hooks := observability.NewPrometheusHooks(reg)
	observability.SetBuildHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)

	f := c.newForest(opts.layoutFlags)
	if len(paths) > 0 {
		docs, err := readDocuments(ctx, stdin, paths)
		if err != nil {
			return err
		}
		if err := f.AddWoods(ctx, docs...); err != nil {
			return err
		}
	}

	var layouts cache.Cache = cache.NewNullCache()
	if cfg.Cache.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			return err
		}
		layouts = rc
		c.Logger.Info("layout cache enabled", "redis", cfg.Cache.RedisAddr, "ttl", cfg.Cache.TTL)
	}
	defer layouts.Close()

	srv := server.New(f, server.Options{
		Cache:        layouts,
		Prefix:       cfg.Cache.Prefix,
		TTL:          cfg.Cache.TTL,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Metrics:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Logger:       c.Logger,
	})

	printInfo(c.out, "Serving %s on %s", plural(f.Len(), "tree"), cfg.Server.Addr)
	return srv.ListenAndServe(ctx, cfg.Server)
}
