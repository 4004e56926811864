// Package zapsink bridges lifecycle events into structured zap logs.
package zapsink

import (
	"context"

	"go.uber.org/zap"

	"github.com/goliatone/go-permrun/pkg/lifecycle"
)

// Hook writes one structured record per lifecycle event.
type Hook struct {
	Logger *zap.Logger
}

// Notify implements lifecycle.Hook.
func (h Hook) Notify(_ context.Context, event lifecycle.Event) error {
	if h.Logger == nil {
		return nil
	}
	h.Logger.Info(event.Verb,
		zap.String("suite", event.SuiteID),
		zap.String("case", event.CaseID),
		zap.Int("perm", event.Index),
		zap.Int("case_perm", event.Permutation),
		zap.String("geometry", event.Geometry),
		zap.String("run_id", event.RunID),
		zap.String("channel", event.Channel),
		zap.Time("occurred_at", event.OccurredAt),
	)
	return nil
}
