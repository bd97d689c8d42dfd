package history

import (
	"context"
	"fmt"
	"time"

	"findatex-hq/regcheck/pkg/config"
	"findatex-hq/regcheck/pkg/telemetry/logging"
	"findatex-hq/regcheck/pkg/telemetry/metrics"
)

// Pruner enforces the retention policy on a Store.
type Pruner struct {
	store   Store
	config  config.RetentionConfig
	logger  *logging.Logger
	metrics *metrics.Collector
	now     func() time.Time
}

// NewPruner creates a pruner. logger and collector may be nil.
func NewPruner(store Store, cfg config.RetentionConfig, logger *logging.Logger, collector *metrics.Collector) *Pruner {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Pruner{
		store:   store,
		config:  cfg,
		logger:  logger.Component("history.retention"),
		metrics: collector,
		now:     time.Now,
	}
}

// Prune deletes runs older than MaxAge, then trims the remainder to the
// newest MaxRuns. It returns the total number of deleted runs.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	start := p.now()
	var total int64

	if p.config.MaxAge > 0 {
		cutoff := start.Add(-p.config.MaxAge)
		n, err := p.store.DeleteBefore(ctx, cutoff)
		if err != nil {
			return total, fmt.Errorf("age-based pruning failed: %w", err)
		}
		total += n
		if n > 0 {
			p.logger.Info("pruned runs by age", "deleted_count", n, "cutoff", cutoff)
		}
	}

	if p.config.MaxRuns > 0 {
		n, err := p.store.DeleteBeyond(ctx, p.config.MaxRuns)
		if err != nil {
			return total, fmt.Errorf("count-based pruning failed: %w", err)
		}
		total += n
		if n > 0 {
			p.logger.Info("pruned runs by count", "deleted_count", n, "max_runs", p.config.MaxRuns)
		}
	}

	p.metrics.RecordHistoryPruned(total)
	if remaining, err := p.store.Count(ctx, nil); err == nil {
		p.metrics.SetHistoryRuns(remaining)
	}

	p.logger.Debug("pruning completed", "deleted_count", total, "duration", time.Since(start))
	return total, nil
}
