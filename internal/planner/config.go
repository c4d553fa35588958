package planner

import (
	"github.com/triptrop/client/internal/auth"
	"github.com/triptrop/client/internal/core"
	"github.com/triptrop/client/internal/search"
	"github.com/triptrop/client/internal/transport"
	pkgredis "github.com/triptrop/client/pkg/redis"
)

// Config is the full client configuration, sourced from environment
// variables by envconfig.
type Config struct {
	Env core.Environment `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Transport transport.Config
	Redis     pkgredis.Config

	// Resource kinds
	Search search.Config
	Auth   auth.Config
}

// Credential store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)
