package storage

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Fallback writes and reads through the primary store and degrades to the
// local store whenever the primary fails. Records keep the same shape either way.
type Fallback struct {
	primary Store
	local   Store
}

func NewFallback(primary, local Store) *Fallback {
	return &Fallback{primary: primary, local: local}
}

func (f *Fallback) Save(ctx context.Context, collection string, rec Record) error {
	if f.primary != nil {
		err := f.primary.Save(ctx, collection, rec)
		if err == nil {
			return nil
		}
		log.WithError(err).Warnf("⚠️ remote save to %s failed, using local store", collection)
	}
	return f.local.Save(ctx, collection, rec)
}

func (f *Fallback) QueryRecent(ctx context.Context, collection string, limit int) ([]Record, error) {
	if f.primary != nil {
		recs, err := f.primary.QueryRecent(ctx, collection, limit)
		if err == nil {
			return recs, nil
		}
		log.WithError(err).Warnf("⚠️ remote query of %s failed, using local store", collection)
	}
	return f.local.QueryRecent(ctx, collection, limit)
}

// Prune applies the cutoff to every underlying store that supports it.
func (f *Fallback) Prune(ctx context.Context, before time.Time) (int, error) {
	total := 0
	for _, s := range []Store{f.primary, f.local} {
		p, ok := s.(Pruner)
		if !ok || s == nil {
			continue
		}
		n, err := p.Prune(ctx, before)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
