package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"pairgen/internal/catalog"
	"pairgen/internal/config"
	"pairgen/internal/metrics"
	"pairgen/internal/metrics/datadog"
	"pairgen/internal/run"
	"pairgen/internal/synonym"

	// register all backends with the sink factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "pairgen/internal/sink/all"
)

// main is the entry point for the pair generator binary. It resolves the
// run configuration, optionally initializes a metrics backend, and executes
// the generation run.
func main() {
	var (
		catalogPathFlg    string
		lexiconPathFlg    string
		outDirFlg         string
		sinkKindFlg       string
		metricsBackendFlg string
		validate          bool
	)

	flag.StringVar(&catalogPathFlg, "catalog", "", "catalog index JSON path (overrides env CATALOG_PATH)")
	flag.StringVar(&lexiconPathFlg, "lexicon", "", "synonym lexicon JSON path (overrides env LEXICON_PATH)")
	flag.StringVar(&outDirFlg, "out", "", "output directory for the jsonl sink (overrides env OUT_DIR)")
	flag.StringVar(&sinkKindFlg, "sink", "", "sink backend: jsonl, sqlite, postgres, mssql (overrides env SINK_KIND)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (datadog, none)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		fatalf("config: %v", err)
	}

	// Flags win over environment values.
	if catalogPathFlg != "" {
		cfg.CatalogPath = catalogPathFlg
	}
	if lexiconPathFlg != "" {
		cfg.LexiconPath = lexiconPathFlg
	}
	if outDirFlg != "" {
		cfg.OutDir = outDirFlg
	}
	if sinkKindFlg != "" {
		cfg.SinkKind = sinkKindFlg
	}

	if cfg.Domain == "" && cfg.Subject == "" {
		fatalf("config: one of SDM_DOMAIN or SDM_SUBJECT must be set")
	}
	if !cfg.NormalizedEnabled && !cfg.KeyValuesEnabled {
		fatalf("config: both output shapes disabled, nothing to generate")
	}

	if validate {
		log.Printf("configuration is valid")
		os.Exit(0)
	}

	// Decide metrics backend: flag → env → default (none).
	backendName := metricsBackendFlg
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "datadog":
		// Buffers metrics and submits periodically, plus one final time at
		// shutdown, so long runs produce a time series rather than one spike.
		extraTags := datadog.ParseTagsCSV(os.Getenv("METRICS_TAGS"))

		b, err := datadog.NewBackend(context.Background(), datadog.Options{
			JobName: "pairgen",
			Tags:    extraTags,
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
		} else {
			log.Printf("metrics: backend=%v tags=%v", backendName, extraTags)
			metrics.SetBackend(b)
			defer func() {
				if err := b.Close(); err != nil {
					log.Printf("metrics: datadog close/flush error: %v", err)
				}
			}()
		}

	case "", "none":
		if *verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		fatalf("%v", err)
	}
	lex, err := synonym.LoadLexicon(cfg.LexiconPath)
	if err != nil {
		fatalf("%v", err)
	}

	if *verbose {
		log.Printf("run: domain=%q subject=%q name=%q depth=%d iterations=%d sink=%s",
			cfg.Domain, cfg.Subject, cfg.Name, cfg.Depth, cfg.Iterations, cfg.SinkKind)
	}

	runner := &run.Runner{
		Catalog: cat,
		Lexicon: lex,
		Log:     log.Default(),
		Client:  &http.Client{Timeout: 30 * time.Second},
	}

	start := time.Now()
	if err := runner.Run(context.Background(), cfg); err != nil {
		log.Fatalf("%v", err)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
