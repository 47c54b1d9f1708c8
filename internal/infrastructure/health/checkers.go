package health

import (
	"context"

	"github.com/emberwatch/emberwatch/internal/core/ports"
	infraDB "github.com/emberwatch/emberwatch/internal/infrastructure/db"
	"github.com/go-redis/redis/v8"
)

// probe adapts a named check function to ports.HealthChecker.
type probe struct {
	name  string
	check func(ctx context.Context) error
}

func (p *probe) Name() string                    { return p.name }
func (p *probe) Check(ctx context.Context) error { return p.check(ctx) }

// NewDBHealthChecker reports whether the Postgres pool answers pings.
func NewDBHealthChecker(database *infraDB.Database) ports.HealthChecker {
	return &probe{name: "database", check: database.PingContext}
}

// NewRedisHealthChecker reports whether Redis answers pings.
func NewRedisHealthChecker(client *redis.Client) ports.HealthChecker {
	return &probe{name: "redis", check: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}}
}
