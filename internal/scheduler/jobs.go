package scheduler

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"aiden/internal/analytics"
	"aiden/internal/storage"
)

// PruneJob deletes stored records older than the cutoff returned for now.
// A zero cutoff disables pruning.
func PruneJob(p storage.Pruner, cutoff func(time.Time) time.Time, now func() time.Time) func(context.Context) error {
	return func(ctx context.Context) error {
		before := cutoff(now())
		if before.IsZero() {
			return nil
		}
		n, err := p.Prune(ctx, before)
		if err != nil {
			return fmt.Errorf("prune records: %w", err)
		}
		log.WithField("removed", n).Infof("🧹 Retention pass removed records older than %s", before.Format("2006-01-02"))
		return nil
	}
}

// ReportJob logs yesterday's usage computed from the conversations collection.
func ReportJob(st storage.Store, window int, now func() time.Time) func(context.Context) error {
	return func(ctx context.Context) error {
		recs, err := st.QueryRecent(ctx, storage.CollectionConversations, window)
		if err != nil {
			return fmt.Errorf("load conversations: %w", err)
		}
		stats := analytics.AnalyzeDaily(recs, now().AddDate(0, 0, -1))
		log.Info("📊 " + stats.GenerateReportSummary())
		js, err := stats.ToJSON()
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		log.WithField("report", js).Debug("daily report")
		return nil
	}
}
