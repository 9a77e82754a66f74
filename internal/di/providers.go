package di

import (
	"fmt"

	"AlertSlope/internal/domain/models"
	"AlertSlope/internal/domain/repository"
	domsvc "AlertSlope/internal/domain/service"
	"AlertSlope/internal/handler/api"
	"AlertSlope/internal/services/features"
	"AlertSlope/internal/services/slope"
	"AlertSlope/internal/usecase"
	"AlertSlope/pkg/config"
	xhttp "AlertSlope/pkg/http"
	pkgkafka "AlertSlope/pkg/kafka"
	"AlertSlope/pkg/logger"
	"AlertSlope/pkg/metrics"
	"AlertSlope/pkg/server"
)

// ProvideLogger creates the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(logger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideSlopeParams returns the configured target band and minimum history length.
func ProvideSlopeParams(cfg *config.Config) models.Params {
	return models.Params{Band: cfg.Slope.TargetBand, MinHistLength: cfg.Slope.MinHistLength}
}

// ProvideFitter creates the least-squares fitter.
func ProvideFitter(cfg *config.Config) *slope.Fitter {
	return slope.NewFitter(
		slope.WithMaxEvaluations(cfg.Slope.MaxEvaluations),
		slope.WithFitTimeout(cfg.Slope.FitTimeout),
	)
}

// ProvideSlopeEstimator creates the batch estimator.
func ProvideSlopeEstimator(
	cfg *config.Config,
	fitter *slope.Fitter,
	params models.Params,
	m repository.Metrics,
	l *logger.Logger,
) domsvc.SlopeEstimator {
	return slope.NewEstimator(
		slope.WithFitter(fitter),
		slope.WithDefaults(params),
		slope.WithWorkers(cfg.Slope.Workers),
		slope.WithMetrics(m),
		slope.WithLogger(l.With(logger.String("component", "slope_estimator"))),
	)
}

// ProvideExtractor creates the alert field extractor.
func ProvideExtractor(l *logger.Logger) *features.Extractor {
	return features.NewExtractor(l.With(logger.String("component", "extractor")))
}

// ProvideAlertEnricher creates the enrichment use case.
func ProvideAlertEnricher(
	extractor *features.Extractor,
	estimator domsvc.SlopeEstimator,
	m repository.Metrics,
	l *logger.Logger,
) *usecase.AlertEnricher {
	return usecase.NewAlertEnricher(extractor, estimator, m, l)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
// It returns nil when the stream is disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *logger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerAutoOffsetReset(cfg.Kafka.Consumer.AutoOffsetReset),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NewLoggingHook(l.With(logger.String("component", "kafka_hook"))))
	return consumer, nil
}

// ProvideKafkaAlertsHandler creates the handler for the alerts topic.
func ProvideKafkaAlertsHandler(cfg *config.Config, enricher *usecase.AlertEnricher, params models.Params, l *logger.Logger) *usecase.KafkaAlertsHandler {
	return usecase.NewKafkaAlertsHandler(cfg.Kafka.Topic, enricher, params, l)
}

// ProvideSlopesHandler creates the HTTP handler.
func ProvideSlopesHandler(l *logger.Logger, enricher *usecase.AlertEnricher) *api.SlopesEchoHandler {
	return api.NewSlopesEchoHandler(l, enricher)
}

// ProvideHTTPServer creates the Echo server with the API routes registered.
func ProvideHTTPServer(cfg *config.Config, h *api.SlopesEchoHandler, l *logger.Logger) *xhttp.Server {
	return xhttp.NewServer(h,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithBodyLimit(cfg.Server.BodyLimit),
		xhttp.WithRateLimit(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst),
		xhttp.WithTrustForwardedFor(cfg.Server.TrustForwardedFor),
		xhttp.WithMetrics(cfg.Metrics.Enabled, cfg.Metrics.Path),
		xhttp.WithLogger(l),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	httpServer *xhttp.Server,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaAlertsHandler,
	l *logger.Logger,
) *server.App {
	app := server.New(cfg, httpServer, l)
	if consumer != nil {
		app.SetConsumer(consumer, kh)
	}
	return app
}
