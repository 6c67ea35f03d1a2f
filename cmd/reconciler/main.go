// Command reconciler runs one company reconciliation batch from the command
// line: it reads candidate records as JSON, reconciles them against the
// workspace's company directory, and prints the resulting domain→ID mapping.
//
// Wiring lives here; business logic lives in internal packages.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/twmb/franz-go/pkg/kgo"

	companymetrics "orgbook/internal/company/metrics"
	"orgbook/internal/company/models"
	companyservice "orgbook/internal/company/service"
	companystore "orgbook/internal/company/store/company"
	"orgbook/internal/enrichment"
	"orgbook/internal/notify"
	"orgbook/internal/platform/config"
	"orgbook/internal/platform/logger"
	platformredis "orgbook/internal/platform/redis"

	id "orgbook/pkg/domain"
)

func main() {
	var (
		workspaceFlag = flag.String("workspace", "", "workspace UUID to reconcile into (required)")
		inputFlag     = flag.String("input", "-", "path to a JSON array of candidates, or - for stdin")
	)
	flag.Parse()

	log := logger.New()
	if err := run(log, *workspaceFlag, *inputFlag); err != nil {
		log.Error("reconcile failed", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger, workspaceArg, inputArg string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	workspaceID, err := id.ParseWorkspaceID(workspaceArg)
	if err != nil {
		return fmt.Errorf("invalid -workspace: %w", err)
	}

	candidates, err := readCandidates(inputArg)
	if err != nil {
		return err
	}

	cfg := config.FromEnv()
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("ORGBOOK_DATABASE_URL is required")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	opts := []companyservice.Option{
		companyservice.WithLogger(log),
		companyservice.WithMetrics(companymetrics.New()),
	}

	if cfg.Enrichment.BaseURL != "" {
		var lookup enrichment.Lookup = enrichment.NewClient(cfg.Enrichment.BaseURL,
			enrichment.WithTimeout(cfg.Enrichment.Timeout),
			enrichment.WithLogger(log),
		)

		redisClient, err := platformredis.New(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		if redisClient != nil {
			defer redisClient.Close()
			lookup = enrichment.NewCache(lookup, redisClient, enrichment.WithCacheLogger(log))
		}

		opts = append(opts, companyservice.WithLookup(lookup))
	}

	var notifier *notify.KafkaNotifier
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err := kgo.NewClient(kgo.SeedBrokers(cfg.Kafka.Brokers...))
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
		defer kafkaClient.Close()

		topic := cfg.Kafka.Topic
		if topic == "" {
			topic = notify.DefaultTopic
		}
		if err := notify.EnsureTopic(ctx, kafkaClient, topic, 1); err != nil {
			return fmt.Errorf("ensure topic: %w", err)
		}

		notifier = notify.NewKafka(kafkaClient, notify.WithTopic(topic), notify.WithLogger(log))
		// The worker outlives the signal context so Close can flush the
		// queued event before the process exits.
		go func() {
			_ = notifier.Run(context.Background())
		}()

		opts = append(opts, companyservice.WithNotifier(notifier))
	}

	svc := companyservice.New(companystore.NewPostgres(db), opts...)

	mapping, err := svc.Reconcile(ctx, workspaceID, candidates)
	if err != nil {
		return err
	}

	if notifier != nil {
		drainCtx, cancelDrain := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelDrain()
		if err := notifier.Close(drainCtx); err != nil {
			log.Warn("batch notification may not have been delivered", "error", err)
		}
	}

	out := make(map[string]string, len(mapping))
	for domain, companyID := range mapping {
		out[domain] = companyID.String()
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func readCandidates(path string) ([]models.Candidate, error) {
	var reader io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		reader = f
	}

	var candidates []models.Candidate
	if err := json.NewDecoder(reader).Decode(&candidates); err != nil {
		return nil, fmt.Errorf("decode candidates: %w", err)
	}
	return candidates, nil
}
