package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"AlertSlope/internal/domain/models"
	pkgkafka "AlertSlope/pkg/kafka"
	"AlertSlope/pkg/logger"
)

// KafkaAlertsHandler consumes alert messages and enriches them with the slope feature.
// A message is either one JSON alert or a JSON array of alerts.
type KafkaAlertsHandler struct {
	topic    string
	enricher *AlertEnricher
	params   models.Params
	log      *logger.Logger
}

func NewKafkaAlertsHandler(topic string, enricher *AlertEnricher, params models.Params, log *logger.Logger) *KafkaAlertsHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &KafkaAlertsHandler{topic: topic, enricher: enricher, params: params, log: log}
}

func (h *KafkaAlertsHandler) Topic() string { return h.topic }

func (h *KafkaAlertsHandler) Handle(ctx context.Context, b []byte) error {
	alerts, err := decodeAlerts(b)
	if err != nil {
		h.enricher.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if len(alerts) == 0 {
		return nil
	}

	_, summary, err := h.enricher.Enrich(ctx, "kafka", alerts, h.params)
	if err != nil {
		return err
	}

	fields := []logger.Field{
		logger.String("topic", h.topic),
		logger.Int("alerts", summary.Count),
		logger.Int("enriched", summary.Enriched),
	}
	if summary.Mean != nil {
		fields = append(fields,
			logger.Float64("slope_mean", *summary.Mean),
			logger.Float64("slope_min", *summary.Min),
			logger.Float64("slope_max", *summary.Max),
		)
	}
	h.log.Debug("kafka batch summary", fields...)
	return nil
}

func decodeAlerts(b []byte) ([]models.Alert, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("decode alerts: empty message")
	}
	if trimmed[0] == '[' {
		var alerts []models.Alert
		if err := json.Unmarshal(trimmed, &alerts); err != nil {
			return nil, fmt.Errorf("decode alerts: %w", err)
		}
		return alerts, nil
	}
	var alert models.Alert
	if err := json.Unmarshal(trimmed, &alert); err != nil {
		return nil, fmt.Errorf("decode alert: %w", err)
	}
	return []models.Alert{alert}, nil
}

var _ pkgkafka.MessageHandler = (*KafkaAlertsHandler)(nil)
