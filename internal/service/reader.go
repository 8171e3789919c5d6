package service

import (
	"context"

	"github.com/jmpinto/eventos-escuteiros/internal/domain"
	"github.com/jmpinto/eventos-escuteiros/internal/infra/observability"
	"github.com/jmpinto/eventos-escuteiros/internal/port"
)

// readCached reads a full table through the shared cache, recording hit and
// miss metrics. The cache is advisory only; freshness-critical paths call
// the gateway directly instead of going through here.
func readCached(ctx context.Context, gateway port.TableGateway, cache port.TableCache, metrics *observability.Metrics, table string) ([]domain.Record, error) {
	if records, ok := cache.Get(table); ok {
		metrics.IncrCacheHit(table)
		return records, nil
	}
	metrics.IncrCacheMiss(table)

	records, err := gateway.ReadAll(ctx, table)
	if err != nil {
		metrics.IncrRemoteError(table)
		return nil, err
	}
	cache.Set(table, records)
	return records, nil
}
