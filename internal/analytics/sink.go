// Package analytics records interaction events for offline analysis.
// Recording is best-effort: a failing sink degrades observability, never
// the chat flow.
package analytics

import (
	"context"

	"go.uber.org/zap"

	"github.com/retailcx/support-chatbot/internal/model"
	"github.com/retailcx/support-chatbot/internal/nats"
	"github.com/retailcx/support-chatbot/pkg/logger"
	"github.com/retailcx/support-chatbot/pkg/metrics"
)

// Sink receives one event per handled message.
type Sink interface {
	Record(ctx context.Context, event *model.InteractionEvent)

	// Healthy reports whether the sink can currently deliver events.
	Healthy() bool
}

// StreamSink publishes events to the JetStream analytics stream.
type StreamSink struct {
	stream *nats.StreamManager
	client *nats.Client
	logger *logger.Logger
}

func NewStreamSink(client *nats.Client, stream *nats.StreamManager, log *logger.Logger) *StreamSink {
	return &StreamSink{stream: stream, client: client, logger: log}
}

func (s *StreamSink) Record(ctx context.Context, event *model.InteractionEvent) {
	if _, err := s.stream.PublishInteraction(ctx, event); err != nil {
		metrics.AnalyticsPublishFailures.Inc()
		s.logger.Warn("failed to publish interaction event",
			zap.String("event_id", event.ID),
			zap.String("session_id", event.SessionID),
			zap.Error(err),
		)
	}
}

func (s *StreamSink) Healthy() bool {
	return s.client.IsConnected()
}

// LogSink writes events to the structured log. It is the fallback when no
// NATS server is configured or reachable at startup.
type LogSink struct {
	logger *logger.Logger
}

func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{logger: log}
}

func (s *LogSink) Record(_ context.Context, event *model.InteractionEvent) {
	s.logger.Info("interaction",
		zap.String("event_id", event.ID),
		zap.String("session_id", event.SessionID),
		zap.String("intent", string(event.Intent)),
		zap.Float64("confidence", event.Confidence),
		zap.Bool("escalated", event.Escalated),
		zap.String("template_id", event.TemplateID),
		zap.Int64("latency_ms", event.LatencyMs),
	)
}

func (s *LogSink) Healthy() bool {
	return true
}
