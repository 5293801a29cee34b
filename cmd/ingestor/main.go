package main

import (
	"context"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"review_insights/internal/adapters/dataset"
	"review_insights/internal/adapters/observability"
	redisad "review_insights/internal/adapters/redis"
	"review_insights/internal/adapters/reviewsource"
	"review_insights/internal/app"
	"review_insights/internal/shared"
	mysqlrepo "review_insights/internal/storage/mysql"
)

func main() {
	_ = godotenv.Load()
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("base", cfg.SourceBase).
		Int("workers", cfg.Workers).
		Int("reviews", cfg.ReviewCount).
		Int("apps", len(cfg.Apps)).
		Str("file", cfg.IngestFile).
		Msg("ingestor starting")

	db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN, 30*time.Second)
	if err != nil {
		log.Fatal().Err(err).Msg("database unavailable")
	}
	defer db.Close()
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()

	client, err := reviewsource.New(cfg.SourceBase, cfg.SourceKey, cfg.SourceRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize review source client")
	}
	norm := app.NewConfiguredNormalizer(cfg)
	ing := app.NewIngestionService(client, repo, cache, norm, observability.Recorder{})

	if cfg.IngestFile != "" {
		raw, err := dataset.Load(cfg.IngestFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.IngestFile).Msg("load dataset failed")
		}
		st, err := ing.IngestRecords(ctx, cfg.IngestFile, raw)
		if err != nil {
			log.Fatal().Err(err).Msg("ingest dataset failed")
		}
		log.Info().Int("kept", st.Kept).Int("dropped", st.Dropped).Msg("dataset ingested")
	}

	entities := make([]string, 0, len(cfg.Apps))
	for e := range cfg.Apps {
		entities = append(entities, e)
	}
	sort.Strings(entities)

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup
	for _, entity := range entities {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Error().Err(err).Msg("semaphore acquire failed")
			break
		}

		wg.Add(1)
		go func(entity, appID string) {
			defer wg.Done()
			defer sem.Release(1)

			st, err := ing.IngestApp(ctx, entity, appID, cfg.ReviewCount)
			if err != nil {
				log.Warn().Str("entity", entity).Str("app", appID).Err(err).Msg("ingest failed")
				return
			}
			log.Info().Str("entity", entity).Int("kept", st.Kept).Int("dropped", st.Dropped).Msg("ingest ok")
		}(entity, cfg.Apps[entity])
	}
	wg.Wait()
	log.Info().Msg("ingestion completed")

	eng, err := app.NewEngine(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("engine")
	}
	an := app.NewAnalysisService(eng, norm, app.AnalysisDeps{
		Repo: repo, Store: repo, Cache: cache, Observer: observability.Recorder{},
	}, cfg.AnalysisWorkers)
	res, err := an.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("analysis failed")
	}
	log.Info().Str("run_id", res.RunID).Int("entities", len(res.Report)).Msg("insights refreshed")
}
