package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/hanpama/bookgraph/internal/config"
	"github.com/hanpama/bookgraph/internal/eventbus"
	"github.com/hanpama/bookgraph/internal/executor"
	"github.com/hanpama/bookgraph/internal/introspection"
	"github.com/hanpama/bookgraph/internal/language"
	"github.com/hanpama/bookgraph/internal/library"
	"github.com/hanpama/bookgraph/internal/logging"
	"github.com/hanpama/bookgraph/internal/otel"
	"github.com/hanpama/bookgraph/internal/schema"
	"github.com/hanpama/bookgraph/internal/server"
	"github.com/hanpama/bookgraph/internal/store"
)

const rootUsage = `bookgraph: GraphQL endpoint over an in-memory library of authors and books

USAGE:
  bookgraph <command> [flags]

COMMANDS:
  serve            Run the HTTP GraphQL endpoint
  query            Execute one GraphQL document against the seed data and print JSON
  print-schema     Print the schema as SDL
  help             Show help for any command
`

const serveUsage = `serve FLAGS:
  -config <file>                      YAML configuration file (must exist when given)
  -server.addr <addr>                 HTTP listen address (default: :4000)
  -server.pretty                      Pretty-print JSON responses
  -server.timeout <duration>          Per-request timeout, e.g. 10s (default: 10s)
  -server.max-body <bytes>            Maximum request body size (default: 1048576)
  -server.cors <origin>               Allowed CORS origin. Repeatable; * allows any
  -server.graphiql <bool>             Serve GraphiQL to browsers (default: true)
  -executor.max-depth N               Maximum selection depth, 0 for none (default: 12)
  -executor.parallelism N             Sibling query fields resolved concurrently (default: 0)
  -otel.endpoint <addr>               OTLP collector endpoint
  -otel.service <name>                OpenTelemetry service name (default: bookgraph)
  -log.debug                          Development logging at debug level
  -seed <file>                        YAML file with authors and books to start from
Flags override values from the configuration file.
`

const queryUsage = `query FLAGS:
  -q <document>     GraphQL document (required)
  -vars <json>      Variables as a JSON object
  -op <name>        Operation to run when the document has several
  -seed <file>      YAML file with authors and books to start from
`

const printSchemaUsage = `print-schema FLAGS:
  -out <file>   Write SDL to file (default: stdout)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("bookgraph", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		// print usage on parse error
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
	case "query":
		return cmdQuery(cmdArgs)
	case "print-schema":
		return cmdPrintSchema(cmdArgs)
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
	case "query":
		fmt.Print(queryUsage)
	case "print-schema":
		fmt.Print(printSchemaUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type stringListFlag []string

func (s *stringListFlag) String() string { return strings.Join(*s, ",") }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// serveFlags parses the serve command line and layers it over the config file.
func serveFlags(args []string) (*config.Config, error) {
	def := config.Default()
	configPath := ""
	seedPath := ""
	flagged := *def
	var cors stringListFlag

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&configPath, "config", configPath, "YAML configuration file")
	fs.StringVar(&flagged.Server.Addr, "server.addr", def.Server.Addr, "HTTP listen address")
	fs.BoolVar(&flagged.Server.Pretty, "server.pretty", def.Server.Pretty, "Pretty-print JSON responses")
	fs.DurationVar(&flagged.Server.Timeout, "server.timeout", def.Server.Timeout, "Per-request timeout")
	fs.Int64Var(&flagged.Server.MaxBodyBytes, "server.max-body", def.Server.MaxBodyBytes, "Maximum request body size")
	fs.Var(&cors, "server.cors", "Allowed CORS origin")
	fs.BoolVar(&flagged.Server.GraphiQL, "server.graphiql", def.Server.GraphiQL, "Serve GraphiQL")
	fs.IntVar(&flagged.Executor.MaxDepth, "executor.max-depth", def.Executor.MaxDepth, "Maximum selection depth")
	fs.IntVar(&flagged.Executor.Parallelism, "executor.parallelism", def.Executor.Parallelism, "Concurrent sibling fields")
	fs.StringVar(&flagged.Otel.Endpoint, "otel.endpoint", def.Otel.Endpoint, "OTLP collector endpoint")
	fs.StringVar(&flagged.Otel.Service, "otel.service", def.Otel.Service, "OpenTelemetry service name")
	fs.BoolVar(&flagged.Log.Debug, "log.debug", def.Log.Debug, "Development logging")
	fs.StringVar(&seedPath, "seed", seedPath, "Seed data file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "server.addr":
			cfg.Server.Addr = flagged.Server.Addr
		case "server.pretty":
			cfg.Server.Pretty = flagged.Server.Pretty
		case "server.timeout":
			cfg.Server.Timeout = flagged.Server.Timeout
		case "server.max-body":
			cfg.Server.MaxBodyBytes = flagged.Server.MaxBodyBytes
		case "server.cors":
			cfg.Server.CORSOrigins = cors
		case "server.graphiql":
			cfg.Server.GraphiQL = flagged.Server.GraphiQL
		case "executor.max-depth":
			cfg.Executor.MaxDepth = flagged.Executor.MaxDepth
		case "executor.parallelism":
			cfg.Executor.Parallelism = flagged.Executor.Parallelism
		case "otel.endpoint":
			cfg.Otel.Endpoint = flagged.Otel.Endpoint
		case "otel.service":
			cfg.Otel.Service = flagged.Otel.Service
		case "log.debug":
			cfg.Log.Debug = flagged.Log.Debug
		}
	})
	if seedPath != "" {
		seed, err := config.LoadSeed(seedPath)
		if err != nil {
			return nil, err
		}
		cfg.Seed = &seed
	}
	return cfg, nil
}

// newHandler wires store, schema, executor and HTTP handler from cfg.
func newHandler(cfg *config.Config) http.Handler {
	st := store.New(cfg.StoreSeed())
	sch := introspection.Extend(library.NewSchema(st))
	exec := executor.NewExecutor(sch, cfg.ExecutorOptions()...)

	sopts := []server.Option{
		server.WithTimeout(cfg.Server.Timeout),
		server.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		server.WithGraphiQL(cfg.Server.GraphiQL),
	}
	if cfg.Server.Pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		sopts = append(sopts, server.WithCORS(cfg.Server.CORSOrigins...))
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", server.New(exec, sopts...))
	return mux
}

func cmdServe(args []string) error {
	cfg, err := serveFlags(args)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	eventbus.Use(eventbus.New())
	defer logging.Subscribe(logger)()
	shutdown, err := otel.Setup(cfg.Otel.Endpoint, cfg.Otel.Service)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: newHandler(cfg)}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	errc := make(chan error, 1)
	go func() {
		logger.Info("GraphQL server listening", zap.String("addr", cfg.Server.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func cmdQuery(args []string) error {
	document := ""
	varsJSON := ""
	opName := ""
	seedPath := ""
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&document, "q", document, "GraphQL document")
	fs.StringVar(&varsJSON, "vars", varsJSON, "Variables as JSON")
	fs.StringVar(&opName, "op", opName, "Operation name")
	fs.StringVar(&seedPath, "seed", seedPath, "Seed data file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, queryUsage)
		return err
	}
	if document == "" {
		fmt.Fprint(os.Stderr, queryUsage)
		return fmt.Errorf("-q is required")
	}

	var vars map[string]any
	if varsJSON != "" {
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal([]byte(varsJSON), &vars); err != nil {
			return fmt.Errorf("parse -vars: %w", err)
		}
	}
	seed := store.DefaultSeed()
	if seedPath != "" {
		var err error
		if seed, err = config.LoadSeed(seedPath); err != nil {
			return err
		}
	}

	doc, err := language.ParseQuery(document)
	if err != nil {
		return fmt.Errorf("parse query: %w", err)
	}
	exec := executor.NewExecutor(introspection.Extend(library.NewSchema(store.New(seed))))
	res := exec.ExecuteRequest(context.Background(), doc, opName, vars)

	out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func cmdPrintSchema(args []string) error {
	outFile := ""
	fs := flag.NewFlagSet("print-schema", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&outFile, "out", outFile, "Write SDL to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, printSchemaUsage)
		return err
	}

	sdl := schema.Render(library.NewSchema(store.New(store.DefaultSeed())))
	if outFile == "" {
		fmt.Print(sdl)
		return nil
	}
	if err := os.WriteFile(outFile, []byte(sdl), 0644); err != nil {
		return err
	}
	return nil
}
