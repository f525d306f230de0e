package ports

import "context"

// HealthChecker is implemented by backing stores the readiness probe pings.
// db.Postgres is the only one today.
type HealthChecker interface {
	Health(ctx context.Context) error
}
