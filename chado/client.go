// Package chado provides read access to a chado relational schema.
//
// The chado processors pull genes, genetic markers, linkage groups and
// QTLs out of the feature, featureloc, featurepos and
// feature_relationship tables. This package wraps a pgx connection pool
// with the typed queries those processors need, plus CV-term resolution
// by name.
package chado

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	// DefaultSchema is the schema chado tables usually live in.
	DefaultSchema = "chado"

	// DefaultQueryTimeout bounds individual queries.
	DefaultQueryTimeout = 5 * time.Minute
)

// Client provides read access to one chado database.
type Client struct {
	pool    *pgxpool.Pool
	schema  string
	timeout time.Duration
	log     *zap.Logger
	terms   *CVTermResolver
}

// Option configures a Client.
type Option func(*Client)

// WithSchema sets the schema chado tables are qualified with.
func WithSchema(schema string) Option {
	return func(c *Client) {
		if schema != "" {
			c.schema = schema
		}
	}
}

// WithQueryTimeout bounds each query issued by the client.
func WithQueryTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for query diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// Connect opens a pooled connection for the given DSN and verifies it
// with a ping.
func Connect(ctx context.Context, dsn string, opts ...Option) (*Client, error) {
	c := &Client{
		schema:  DefaultSchema,
		timeout: DefaultQueryTimeout,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening chado connection: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging chado database: %w", err)
	}

	c.pool = pool
	c.terms = NewCVTermResolver(pool, c.schema)
	return c, nil
}

// Close releases the connection pool.
func (c *Client) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

// TermID resolves a CV term by cv name and term name. Results are
// memoized for the life of the client.
func (c *Client) TermID(ctx context.Context, cv, name string) (int, error) {
	ctx, cancel := c.queryContext(ctx)
	defer cancel()
	return c.terms.TermID(ctx, cv, name)
}

// table returns the schema-qualified table name.
func (c *Client) table(name string) string {
	return c.schema + "." + name
}

func (c *Client) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}
