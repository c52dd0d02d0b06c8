package acceptance

import (
	"context"
	"net/http"

	"github.com/instaloan/auth-service/pkg/database"
	"github.com/instaloan/auth-service/pkg/observability"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// testInfrastructure satisfies app.Infrastructure over connections owned by
// the suite, so suite teardown controls their lifecycle.
type testInfrastructure struct {
	postgres       *database.Postgres
	redis          *database.Redis
	logger         *zap.Logger
	metricsHandler http.Handler
	meterProvider  *metric.MeterProvider
}

func (i *testInfrastructure) Postgres() *database.Postgres {
	return i.postgres
}

func (i *testInfrastructure) Redis() *database.Redis {
	return i.redis
}

func (i *testInfrastructure) Logger() *zap.Logger {
	return i.logger
}

func (i *testInfrastructure) MetricsHandler() http.Handler {
	return i.metricsHandler
}

func (i *testInfrastructure) MeterProvider() *metric.MeterProvider {
	return i.meterProvider
}

func (i *testInfrastructure) Shutdown(ctx context.Context) error {
	if i.logger != nil {
		_ = i.logger.Sync()
	}
	if i.meterProvider != nil {
		_ = observability.Shutdown(ctx, i.meterProvider, i.logger)
	}
	return nil
}
