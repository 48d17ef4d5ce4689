package mongodb

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jtjeruta/desktop-ims-sub001/pkg/resilience"
)

// CircuitBreakerClient wraps Client with circuit breaker protection. All
// transactional writes and health checks go through the breaker so a dead
// database trips fast instead of piling up blocked requests.
type CircuitBreakerClient struct {
	client         *Client
	circuitBreaker *resilience.CircuitBreaker
}

// NewCircuitBreakerClient creates a circuit breaker protected MongoDB client
func NewCircuitBreakerClient(client *Client, logger *slog.Logger) *CircuitBreakerClient {
	config := resilience.DefaultCircuitBreakerConfig("mongodb")
	config.MaxRequests = 5

	if logger == nil {
		logger = slog.Default()
	}

	return &CircuitBreakerClient{
		client:         client,
		circuitBreaker: resilience.NewCircuitBreaker(config, logger),
	}
}

// Database returns the underlying database handle
func (c *CircuitBreakerClient) Database() *mongo.Database {
	return c.client.Database()
}

// Collection returns a collection handle
func (c *CircuitBreakerClient) Collection(name string) *mongo.Collection {
	return c.client.Collection(name)
}

// Client returns the underlying MongoDB client
func (c *CircuitBreakerClient) Client() *mongo.Client {
	return c.client.Client()
}

// Close disconnects the client
func (c *CircuitBreakerClient) Close(ctx context.Context) error {
	return c.client.Close(ctx)
}

// HealthCheck performs a health check with circuit breaker protection
func (c *CircuitBreakerClient) HealthCheck(ctx context.Context) error {
	_, err := c.circuitBreaker.Execute(ctx, func() (interface{}, error) {
		return nil, c.client.HealthCheck(ctx)
	})
	return err
}

// WithTransaction executes a function within a transaction with circuit
// breaker protection
func (c *CircuitBreakerClient) WithTransaction(ctx context.Context, fn func(sessCtx mongo.SessionContext) error) error {
	_, err := c.circuitBreaker.Execute(ctx, func() (interface{}, error) {
		return nil, c.client.WithTransaction(ctx, fn)
	})
	return err
}

// RawClient returns the underlying Client
func (c *CircuitBreakerClient) RawClient() *Client {
	return c.client
}
