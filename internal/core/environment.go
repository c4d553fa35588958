package core

import (
	"fmt"
	"strings"
)

// Environment is the deployment the client runs in. It decides log format
// and verbosity.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Testing     Environment = "testing"
	Production  Environment = "production"
)

// short names accepted in APP_ENV
var environmentAliases = map[string]Environment{
	"dev":         Development,
	"development": Development,
	"local":       Development,
	"stage":       Staging,
	"staging":     Staging,
	"test":        Testing,
	"testing":     Testing,
	"prod":        Production,
	"production":  Production,
}

func (e Environment) String() string {
	return string(e)
}

// IsProduction reports whether e is production.
func (e Environment) IsProduction() bool {
	return e == Production
}

// IsTesting reports whether e is the test environment, where logging is off.
func (e Environment) IsTesting() bool {
	return e == Testing
}

// Verbose reports whether debug output is wanted.
func (e Environment) Verbose() bool {
	return e == Development || e == Staging
}

// Decode lets envconfig parse APP_ENV. Unknown names are a configuration
// error rather than a silent fallback.
func (e *Environment) Decode(v string) error {
	env, ok := LookupEnvironment(v)
	if !ok {
		return fmt.Errorf("unknown environment %q", v)
	}
	*e = env
	return nil
}

// LookupEnvironment resolves v, case-insensitively and including short
// aliases such as "prod". An empty value is Development.
func LookupEnvironment(v string) (Environment, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return Development, true
	}
	env, ok := environmentAliases[v]
	return env, ok
}

// ParseEnvironment is LookupEnvironment with unknown values falling back to
// Development.
func ParseEnvironment(v string) Environment {
	if env, ok := LookupEnvironment(v); ok {
		return env
	}
	return Development
}
