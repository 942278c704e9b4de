package health

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/achaudhary7/SilverInfo-sub003/internal/core/domain"
	"github.com/achaudhary7/SilverInfo-sub003/internal/core/port"
)

type HealthService struct {
	db      *sql.DB
	cache   port.ResultCache
	fetcher port.QuoteFetcher
}

func NewHealthService(db *sql.DB, cache port.ResultCache, fetcher port.QuoteFetcher) port.HealthService {
	return &HealthService{
		db:      db,
		cache:   cache,
		fetcher: fetcher,
	}
}

func (s *HealthService) GetSystemHealth(ctx context.Context) (*domain.HealthStatus, error) {
	status := &domain.HealthStatus{
		Components: make(map[string]string),
		Timestamp:  time.Now().Unix(),
	}

	allHealthy := true

	// Check PostgreSQL
	if s.db != nil {
		if err := s.db.PingContext(ctx); err != nil {
			status.Components["database"] = "unhealthy"
			allHealthy = false
		} else {
			status.Components["database"] = "healthy"
		}
	} else {
		status.Components["database"] = "unavailable"
		allHealthy = false
	}

	// Check result cache
	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			status.Components["cache"] = "unhealthy"
			allHealthy = false
		} else {
			status.Components["cache"] = "healthy"
		}
	} else {
		status.Components["cache"] = "unavailable"
		allHealthy = false
	}

	// Providers are configured statically; report the chain itself.
	if s.fetcher != nil && len(s.fetcher.Providers()) > 0 {
		status.Components["providers"] = "configured"
	} else {
		status.Components["providers"] = "unavailable"
		allHealthy = false
	}

	if allHealthy {
		status.Status = "healthy"
	} else {
		status.Status = "degraded"
		status.Message = "one or more components are degraded"
	}

	return status, nil
}

func (s *HealthService) GetDetailedHealth(ctx context.Context) (*domain.HealthStatus, error) {
	status, err := s.GetSystemHealth(ctx)
	if err != nil {
		return nil, err
	}

	if s.fetcher != nil {
		names := s.fetcher.Providers()
		status.Components["provider_chain"] = strings.Join(names, " -> ")
		status.Components["provider_count"] = fmt.Sprintf("%d", len(names))
	}

	return status, nil
}
