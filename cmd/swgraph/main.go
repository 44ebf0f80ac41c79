package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hanpama/swgraph/internal/config"
	"github.com/hanpama/swgraph/internal/eventbus"
	"github.com/hanpama/swgraph/internal/logging"
	"github.com/hanpama/swgraph/internal/metrics"
	"github.com/hanpama/swgraph/internal/otel"
	"github.com/hanpama/swgraph/internal/repository/cached"
	"github.com/hanpama/swgraph/internal/repository/memory"
	"github.com/hanpama/swgraph/internal/repository/redisrepo"
	"github.com/hanpama/swgraph/internal/repository/seed"
	"github.com/hanpama/swgraph/internal/server"
	"github.com/hanpama/swgraph/internal/starwars"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const rootUsage = `swgraph: Star Wars GraphQL service

USAGE:
  swgraph <command> [flags]

COMMANDS:
  serve            Run the HTTP GraphQL endpoint
  print-schema     Print the GraphQL schema in SDL
  seed             Write the canonical characters into Redis
  help             Show help for any command
`

const serveUsage = `serve FLAGS:
  -config <file>                  YAML configuration file (default: ./swgraph.yaml if present)
  -server.addr <addr>             HTTP listen address (overrides server.addr)
  -server.pretty                  Pretty-print JSON responses
  -repository.backend <name>      memory or redis (overrides repository.backend)
  -graphql.introspection <bool>   Enable GraphQL introspection (default: true)

Every setting can also be given as SWGRAPH_<SECTION>_<KEY>, e.g. SWGRAPH_SERVER_ADDR.
`

const printSchemaUsage = `print-schema FLAGS:
  -out <file>   Write the SDL to file (default: stdout)
`

const seedUsage = `seed FLAGS:
  -config <file>       YAML configuration file
  -redis.addr <addr>   Redis address (overrides repository.redis.addr)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "swgraph:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("swgraph", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "serve":
		return cmdServe(cmdArgs)
	case "print-schema":
		return cmdPrintSchema(cmdArgs)
	case "seed":
		return cmdSeed(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "serve":
		fmt.Print(serveUsage)
	case "print-schema":
		fmt.Print(printSchemaUsage)
	case "seed":
		fmt.Print(seedUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

func cmdServe(args []string) error {
	configPath := ""
	addr := ""
	pretty := false
	backend := ""
	introspection := true

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&configPath, "config", configPath, "YAML configuration file")
	fs.StringVar(&addr, "server.addr", addr, "HTTP listen address")
	fs.BoolVar(&pretty, "server.pretty", pretty, "Pretty-print JSON responses")
	fs.StringVar(&backend, "repository.backend", backend, "memory or redis")
	fs.BoolVar(&introspection, "graphql.introspection", introspection, "Enable GraphQL introspection")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if pretty {
		cfg.Server.Pretty = true
	}
	if backend != "" {
		cfg.Repository.Backend = backend
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, Development: cfg.Logging.Development})
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eventbus.Use(eventbus.New())
	defer logging.Subscribe(logger)()

	shutdownTracing, err := otel.Setup(otel.Options{
		Endpoint:    cfg.Tracing.Endpoint,
		Service:     cfg.Tracing.Service,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	droids, humans, closeRepos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepos()

	g := starwars.NewGraph(droids, humans)
	sopts := []server.Option{
		server.WithTimeout(cfg.Server.Timeout),
		server.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		server.WithIntrospection(introspection),
	}
	if cfg.Server.Pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		sopts = append(sopts, server.WithCORS(cfg.Server.CORSOrigins...))
	}
	h, err := server.New(starwars.NewRuntime(g, starwars.WithConcurrency(cfg.Concurrency)), g.Schema(), sopts...)
	if err != nil {
		return fmt.Errorf("server init: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", h)

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m := metrics.New(cfg.Metrics.Namespace, reg)
		defer m.Subscribe()()
		mux.Handle(cfg.Metrics.Path, metrics.Handler(reg))
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Info("GraphQL server listening",
		zap.String("addr", cfg.Server.Addr),
		zap.String("backend", cfg.Repository.Backend),
		zap.Bool("cache", cfg.Cache.Enabled),
	)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openRepositories builds the configured backend, optionally behind the
// cache. The returned func releases every resource opened here.
func openRepositories(ctx context.Context, cfg *config.Config) (starwars.DroidRepository, starwars.HumanRepository, func(), error) {
	var (
		droids  starwars.DroidRepository
		humans  starwars.HumanRepository
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.Repository.Backend {
	case config.BackendRedis:
		store := newRedisStore(cfg)
		closers = append(closers, func() { _ = store.Close() })
		if err := store.Ping(ctx); err != nil {
			closeAll()
			return nil, nil, nil, err
		}
		droids, humans = store.Droids(), store.Humans()
	default:
		store := memory.NewSeeded()
		droids, humans = store.Droids(), store.Humans()
	}

	if cfg.Cache.Enabled {
		c, err := cached.New(cached.Options{
			NumCounters: cfg.Cache.NumCounters,
			MaxCost:     cfg.Cache.MaxCost,
			TTL:         cfg.Cache.TTL,
		})
		if err != nil {
			closeAll()
			return nil, nil, nil, err
		}
		closers = append(closers, c.Close)
		droids, humans = c.Droids(droids), c.Humans(humans)
	}
	return droids, humans, closeAll, nil
}

func newRedisStore(cfg *config.Config) *redisrepo.Store {
	return redisrepo.New(redisrepo.Options{
		Addr:     cfg.Repository.Redis.Addr,
		Password: cfg.Repository.Redis.Password,
		DB:       cfg.Repository.Redis.DB,
		Prefix:   cfg.Repository.Redis.Prefix,
	})
}

func cmdPrintSchema(args []string) error {
	outFile := ""
	fs := flag.NewFlagSet("print-schema", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&outFile, "out", outFile, "Write the SDL to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, printSchemaUsage)
		return err
	}

	store := memory.New()
	sdl := starwars.NewGraph(store.Droids(), store.Humans()).SDL()
	if outFile == "" {
		fmt.Print(sdl)
		return nil
	}
	return os.WriteFile(outFile, []byte(sdl), 0o644)
}

func cmdSeed(args []string) error {
	configPath := ""
	redisAddr := ""
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&configPath, "config", configPath, "YAML configuration file")
	fs.StringVar(&redisAddr, "redis.addr", redisAddr, "Redis address")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, seedUsage)
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if redisAddr != "" {
		cfg.Repository.Redis.Addr = redisAddr
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	store := newRedisStore(cfg)
	defer func() { _ = store.Close() }()

	droids, humans := seed.Droids(), seed.Humans()
	if err := store.Seed(ctx, droids, humans); err != nil {
		return err
	}
	fmt.Printf("seeded %d droids and %d humans into %s\n", len(droids), len(humans), cfg.Repository.Redis.Addr)
	return nil
}
