package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/branchbound/internal/api"
	"github.com/matzehuels/branchbound/pkg/cache"
	"github.com/matzehuels/branchbound/pkg/pipeline"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr     string // listen address
	redis    string // redis host:port, enables the Redis backend
	redisDB  int    // redis database number
	mongoURI string // mongodb connection string, enables the Mongo backend
	mongoDB  string // mongodb database name
	noCache  bool   // disable caching entirely
}

// serveCommand creates the serve command, which runs the HTTP solve API.
// Cache endpoints default from REDIS_URL and MONGO_URI so deployments can
// configure the shared backend without flags.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:     ":8080",
		redis:    os.Getenv("REDIS_URL"),
		mongoURI: os.Getenv("MONGO_URI"),
		mongoDB:  appName,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP solve API",
		Long: `Run the HTTP solve API.

The server accepts models inline as TOML and returns the solution plus
optional rendered search trees. Solve results are cached; by default the
cache lives on the local filesystem, but a shared Redis or MongoDB backend
can be configured for multi-instance deployments.

Endpoints:
  GET  /healthz    liveness and build version
  POST /v1/solve   solve a model`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.redis, "redis", opts.redis, "redis address (host:port) for a shared cache ($REDIS_URL)")
	cmd.Flags().IntVar(&opts.redisDB, "redis-db", 0, "redis database number")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", opts.mongoURI, "mongodb connection string for a shared cache ($MONGO_URI)")
	cmd.Flags().StringVar(&opts.mongoDB, "mongo-db", opts.mongoDB, "mongodb database name")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runServe builds the configured cache backend and serves until the
// context is cancelled, then shuts down gracefully.
func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	backend, err := serveCache(ctx, opts)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}

	runner := pipeline.NewRunner(backend, serveKeyer(opts), c.Logger)
	defer runner.Close()

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           api.NewServer(runner, c.Logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("serving", "addr", opts.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// serveCache selects the cache backend from flags. Redis and Mongo are
// mutually exclusive; without either, the local file cache is used.
func serveCache(ctx context.Context, opts *serveOpts) (cache.Cache, error) {
	if opts.redis != "" && opts.mongoURI != "" {
		return nil, fmt.Errorf("--redis and --mongo-uri are mutually exclusive")
	}
	switch {
	case opts.noCache:
		return cache.NewNullCache(), nil
	case opts.redis != "":
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: opts.redis, DB: opts.redisDB})
	case opts.mongoURI != "":
		return cache.NewMongoCache(ctx, cache.MongoConfig{
			URI:        opts.mongoURI,
			Database:   opts.mongoDB,
			Collection: "cache",
		})
	}
	return newCache(false)
}

// serveKeyer namespaces cache keys on shared backends, so several services
// pointed at the same Redis or MongoDB instance stay out of each other's
// keyspace. The local file cache owns its directory and keeps plain keys.
func serveKeyer(opts *serveOpts) cache.Keyer {
	if opts.redis == "" && opts.mongoURI == "" {
		return nil
	}
	return cache.NewScopedKeyer(nil, appName+":")
}
