package port

import (
	"context"

	"github.com/achaudhary7/SilverInfo-sub003/internal/core/domain"
)

type HealthService interface {
	GetSystemHealth(ctx context.Context) (*domain.HealthStatus, error)
	GetDetailedHealth(ctx context.Context) (*domain.HealthStatus, error)
}
