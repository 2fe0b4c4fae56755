package cache

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	fiberredis "github.com/gofiber/storage/redis/v3"
	"github.com/redis/go-redis/v9"
)

// PluginModule provides Redis caching, limiter storage and leases as a mono
// plugin module.
type PluginModule struct {
	container types.ServiceContainer
	storage   *fiberredis.Storage
	client    *redis.Client
	service   CacheService
	locker    *Locker
	redisAddr string
	prefix    string
	ttl       time.Duration
}

// Compile-time interface checks.
var (
	_ mono.PluginModule          = (*PluginModule)(nil)
	_ mono.HealthCheckableModule = (*PluginModule)(nil)
)

// NewPluginModule creates a cache plugin module.
func NewPluginModule(redisAddr, prefix string, ttl time.Duration) *PluginModule {
	return &PluginModule{
		redisAddr: redisAddr,
		prefix:    prefix,
		ttl:       ttl,
	}
}

// Name returns the module name.
func (m *PluginModule) Name() string {
	return "cache"
}

// Start connects to Redis.
func (m *PluginModule) Start(ctx context.Context) error {
	host, port := parseRedisAddr(m.redisAddr)
	m.client = redis.NewClient(&redis.Options{
		Addr:                  net.JoinHostPort(host, strconv.Itoa(port)),
		ContextTimeoutEnabled: true,
	})
	// fiberredis.New panics when Redis is unreachable, so ping first.
	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis at %s: %w", m.redisAddr, err)
	}
	m.storage = fiberredis.New(fiberredis.Config{
		Host:     host,
		Port:     port,
		PoolSize: 50,
	})

	m.service = NewCacheService(m.storage, m.prefix, m.ttl)
	m.locker = NewLocker(m.client, m.prefix+"lease:")

	log.Printf("[cache] Connected to Redis at %s (prefix: %s, TTL: %s)", m.redisAddr, m.prefix, m.ttl)
	return nil
}

// Stop closes the Redis connections.
func (m *PluginModule) Stop(_ context.Context) error {
	var firstErr error
	if m.storage != nil {
		if err := m.storage.Close(); err != nil {
			firstErr = fmt.Errorf("failed to close storage: %w", err)
		}
	}
	if m.client != nil {
		if err := m.client.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close client: %w", err)
		}
	}
	log.Println("[cache] Plugin stopped")
	return firstErr
}

// SetContainer sets the service container for this plugin.
func (m *PluginModule) SetContainer(container types.ServiceContainer) {
	m.container = container
}

// Container returns the service container for this plugin.
func (m *PluginModule) Container() types.ServiceContainer {
	return m.container
}

// Port returns the CacheService for consumers.
func (m *PluginModule) Port() CacheService {
	return m.service
}

// Locker returns the lease provider.
func (m *PluginModule) Locker() *Locker {
	return m.locker
}

// Storage exposes the raw storage for fiber middleware such as the limiter.
func (m *PluginModule) Storage() fiber.Storage {
	return m.storage
}

// Health pings Redis.
func (m *PluginModule) Health(ctx context.Context) mono.HealthStatus {
	if m.client == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "redis client not initialized",
		}
	}

	if err := m.client.Ping(ctx).Err(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("health check failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"redis_addr": m.redisAddr,
			"prefix":     m.prefix,
			"ttl":        m.ttl.String(),
		},
	}
}

// parseRedisAddr parses "host:port" into host and port.
// Returns defaults (127.0.0.1:6379) for invalid or missing values.
func parseRedisAddr(addr string) (string, int) {
	const defaultHost = "127.0.0.1"
	const defaultPort = 6379

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return defaultHost, defaultPort
	}
	if host == "" {
		host = defaultHost
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = defaultPort
	}
	return host, port
}
