package evo

import (
	"context"

	"github.com/charmbracelet/log"

	"gaplace/internal/placement"
)

// Checkpoint is the best individual of a checkpoint generation. Genome is a
// private copy owned by the receiver.
type Checkpoint struct {
	Generation int
	Genome     placement.Genome
	Fitness    float64
}

// CheckpointSink receives checkpoints in generation order. An error aborts the run.
type CheckpointSink interface {
	Emit(ctx context.Context, cp Checkpoint) error
}

// SinkFunc adapts a function to CheckpointSink.
type SinkFunc func(ctx context.Context, cp Checkpoint) error

func (f SinkFunc) Emit(ctx context.Context, cp Checkpoint) error {
	return f(ctx, cp)
}

// ChannelSink forwards checkpoints to a channel, blocking until the receiver
// takes each one or ctx is done. The caller owns and closes the channel.
type ChannelSink chan<- Checkpoint

func (s ChannelSink) Emit(ctx context.Context, cp Checkpoint) error {
	select {
	case s <- cp:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogSink logs every checkpoint at info level.
func LogSink(l *log.Logger) CheckpointSink {
	return SinkFunc(func(_ context.Context, cp Checkpoint) error {
		l.Info("checkpoint", "generation", cp.Generation, "best", cp.Fitness)
		return nil
	})
}

// MultiSink emits to every sink in order and stops at the first error.
type MultiSink []CheckpointSink

func (m MultiSink) Emit(ctx context.Context, cp Checkpoint) error {
	for _, s := range m {
		if s == nil {
			continue
		}
		next := cp
		next.Genome = cp.Genome.Clone()
		if err := s.Emit(ctx, next); err != nil {
			return err
		}
	}
	return nil
}
