package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/subdee/icepay/handler"
	"github.com/subdee/icepay/infra/config"
	"github.com/subdee/icepay/infra/logger"
	"github.com/subdee/icepay/infra/messaging"
	"github.com/subdee/icepay/infra/metrics"
	"github.com/subdee/icepay/infra/opensearch"
	"github.com/subdee/icepay/infra/storage"
	"github.com/subdee/icepay/provider"
	"github.com/subdee/icepay/provider/icepay"
	"github.com/subdee/icepay/router"
)

var version = "1.0.0"

const shutdownTimeout = 15 * time.Second

func main() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Load Env Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Fatal("Service stopped", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var (
		sink     logger.EventSink
		audit    *opensearch.Logger
		checkers []handler.HealthChecker
		osErr    error
	)
	if cfg.OpenSearchEnabled() {
		osClient, err := opensearch.NewClient(ctx, cfg)
		if err != nil {
			osErr = err
		} else {
			audit = opensearch.NewLogger(osClient)
			sink = audit
			checkers = append(checkers, osClient)
		}
	}

	logger.InitGlobalLogger(sink, cfg.LoggingLevel, cfg.Environment)
	if osErr != nil {
		logger.Warn("Continuing without OpenSearch logging", logger.LogContext{
			Fields: map[string]any{"error": osErr.Error()},
		})
	}

	var opts []handler.Option
	if audit != nil {
		opts = append(opts, handler.WithPostbackAudit(audit))
	}

	if cfg.SQLitePath != "" {
		store, err := storage.NewSQLiteStorage(ctx, cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("transaction log: %w", err)
		}
		defer store.Close()

		opts = append(opts, handler.WithTransactionLog(store))
		checkers = append(checkers, store)
	}

	if len(cfg.KafkaBrokers) > 0 {
		publisher := messaging.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaPostbackTopic)
		defer publisher.Close()

		opts = append(opts, handler.WithPublisher(publisher))
		checkers = append(checkers, messaging.NewKafkaChecker(cfg.KafkaBrokers))
	}

	gateway, err := icepay.NewHTTPGateway(icepay.GatewayConfig{
		BasicURL:      cfg.Icepay.BasicURL,
		WebserviceURL: cfg.Icepay.WebserviceURL,
		IPRanges:      cfg.Icepay.IPRanges,
		Timeout:       cfg.Icepay.Timeout,
		URLCompleted:  cfg.Icepay.URLCompleted,
		URLError:      cfg.Icepay.URLError,
	})
	if err != nil {
		return err
	}

	service, err := icepay.New(icepay.Config{
		Credentials: provider.Credentials{
			MerchantID: cfg.Icepay.MerchantID,
			SecretCode: cfg.Icepay.SecretCode,
		},
		Locale: provider.Locale{
			Language: cfg.Icepay.Language,
			Country:  cfg.Icepay.Country,
			Currency: cfg.Icepay.Currency,
		},
		AmbientLocale:   cfg.Locale,
		AmbientCurrency: cfg.Currency,
	}, gateway, icepay.WithPaymentMethodsCache(cfg.Icepay.MethodsTTL))
	if err != nil {
		return err
	}

	if cfg.Icepay.MethodsTTL > 0 {
		metrics.Registry.MustRegister(metrics.NewCacheCollector("payment_methods", service.MethodsCacheSnapshot))
	}

	// Fail at startup rather than on the first payment
	if _, err := service.Locale(); err != nil {
		return err
	}

	paymentHandler := handler.NewPaymentHandler(service, config.App().Validator, opts...)
	healthHandler := handler.NewHealthHandler(version, cfg.Environment, checkers...)

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: router.New(ctx, paymentHandler, healthHandler, router.Options{
			APIKey:         cfg.APIKey,
			RateLimit:      cfg.RateLimit,
			RateWindow:     cfg.RateWindow,
			AllowedOrigins: cfg.AllowedOrigins,
		}),
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("API is running", logger.LogContext{
			Fields: map[string]any{"port": cfg.Port, "version": version},
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
