package sdk

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// LogSink writes envelopes to the structured log.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Write(_ context.Context, env Envelope) error {
	s.logger.Info("analytics event",
		zap.String("id", env.ID),
		zap.String("name", env.Name),
		zap.Time("occurredAt", env.OccurredAt),
		zap.Any("context", env.Context),
		zap.Any("custom", env.Custom),
	)
	return nil
}

// MultiSink fans an envelope out to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) Write(ctx context.Context, env Envelope) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, env); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
