package db

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	TenantKey contextKey = "tenant_subdomain"
	DBConnKey contextKey = "db_conn"
	TxKey     contextKey = "db_tx"
)

var tenantPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// TenantMiddleware resolves the tenant subdomain for every request and scopes
// the acquired database connection to that tenant's schema. Resolution order:
// JWT claim, X-Tenant-Subdomain header, tenant query param, configured default.
func TenantMiddleware(pool *pgxpool.Pool, defaultTenant string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tenant := extractTenant(c, defaultTenant)

			if !tenantPattern.MatchString(tenant) {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid tenant identifier")
			}

			ctx := c.Request().Context()
			conn, err := pool.Acquire(ctx)
			if err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
			}
			defer conn.Release()

			schema := fmt.Sprintf("tenant_%s", schemaName(tenant))
			_, err = conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s, public", schema))
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "tenant resolution failed")
			}

			ctx = context.WithValue(ctx, TenantKey, tenant)
			ctx = context.WithValue(ctx, DBConnKey, conn)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("tenant_subdomain", tenant)

			return next(c)
		}
	}
}

func extractTenant(c echo.Context, defaultTenant string) string {
	// JWT claim, set by the auth middleware
	if t, ok := c.Get("jwt_tenant").(string); ok && t != "" {
		return t
	}

	if t := c.Request().Header.Get("X-Tenant-Subdomain"); t != "" {
		return t
	}

	if t := c.QueryParam("tenant"); t != "" {
		return t
	}

	return defaultTenant
}

// schemaName maps a subdomain to a valid schema suffix (hyphens are not legal
// in unquoted identifiers).
func schemaName(tenant string) string {
	out := make([]byte, len(tenant))
	for i := 0; i < len(tenant); i++ {
		if tenant[i] == '-' {
			out[i] = '_'
		} else {
			out[i] = tenant[i]
		}
	}
	return string(out)
}

// ConnFromContext retrieves the tenant-scoped database connection from context.
func ConnFromContext(ctx context.Context) *pgxpool.Conn {
	conn, _ := ctx.Value(DBConnKey).(*pgxpool.Conn)
	return conn
}

// TenantFromContext retrieves the tenant subdomain from context.
func TenantFromContext(ctx context.Context) string {
	t, _ := ctx.Value(TenantKey).(string)
	return t
}

// TxFromContext retrieves an in-progress transaction from context, if any.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(TxKey).(pgx.Tx)
	return tx
}

// WithTx returns a context carrying tx so that repositories participate in it.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, TxKey, tx)
}

// RunInTx executes fn inside a single transaction. The transaction is placed
// on the context so every repository call inside fn shares it. It begins on
// the tenant-scoped connection when one is present, preserving search_path.
func RunInTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	var tx pgx.Tx
	var err error
	if conn := ConnFromContext(ctx); conn != nil {
		tx, err = conn.Begin(ctx)
	} else {
		tx, err = pool.Begin(ctx)
	}
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(WithTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CreateTenantSchema creates a new schema for a tenant and runs all migrations
// against it. If migrationsDir is empty, migrations are skipped.
func CreateTenantSchema(ctx context.Context, pool *pgxpool.Pool, tenant string, migrationsDir string) error {
	if !tenantPattern.MatchString(tenant) {
		return fmt.Errorf("invalid tenant identifier: %s", tenant)
	}

	schema := fmt.Sprintf("tenant_%s", schemaName(tenant))

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema))
	if err != nil {
		return fmt.Errorf("create schema %s: %w", schema, err)
	}

	if migrationsDir != "" {
		migrator := NewMigrator(pool, migrationsDir)
		if _, err := migrator.Up(ctx, schema); err != nil {
			return fmt.Errorf("run migrations for %s: %w", schema, err)
		}
	}

	return nil
}
