// Package factory resolves configuration into a single provider instance and
// holds it as a process-wide singleton. Set and Reset exist for test
// isolation; production code calls Configure once at startup and Get
// everywhere else.
package factory

import (
	"fmt"
	"sync"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/httpclient"
	"github.com/Ramsey-B/fern/pkg/provider"
	"github.com/Ramsey-B/fern/pkg/provider/composite"
	"github.com/Ramsey-B/fern/pkg/provider/httpapi"
	"github.com/Ramsey-B/fern/pkg/provider/markdown"
	"github.com/Ramsey-B/fern/pkg/redis"
)

// Provider kinds the factory can resolve.
const (
	KindPostgres  = "postgres"
	KindHTTP      = "http"
	KindMarkdown  = "markdown"
	KindComposite = "composite"
)

// Settings selects and configures the provider backend. The postgres provider
// owns live connections, so it is built during startup and injected here.
type Settings struct {
	Kind     string
	HTTP     httpapi.Config
	Markdown markdown.Config
	// Chain lists the backend kinds for the composite provider, primary first.
	Chain []string

	Postgres   provider.Provider
	HTTPClient *httpclient.Client
	Cache      *redis.Client
	Logger     ectologger.Logger
}

var (
	mu        sync.Mutex
	singleton provider.Provider
)

// Configure builds the provider for the settings and installs it as the
// singleton.
func Configure(settings Settings) (provider.Provider, error) {
	p, err := New(settings)
	if err != nil {
		return nil, err
	}
	Set(p)
	return p, nil
}

// New builds a provider for the settings without touching the singleton.
func New(settings Settings) (provider.Provider, error) {
	return build(settings.Kind, settings, false)
}

func build(kind string, settings Settings, nested bool) (provider.Provider, error) {
	switch kind {
	case KindPostgres:
		if settings.Postgres == nil {
			return nil, errors.NewConfiguration("postgres provider is not available")
		}
		return settings.Postgres, nil

	case KindHTTP:
		if settings.HTTPClient == nil {
			return nil, errors.NewConfiguration("http provider requires an http client")
		}
		return httpapi.New(settings.HTTP, settings.HTTPClient, settings.Cache, settings.Logger)

	case KindMarkdown:
		return markdown.New(settings.Markdown, settings.Logger)

	case KindComposite:
		if nested {
			return nil, errors.NewConfiguration("composite chains cannot nest")
		}
		if len(settings.Chain) == 0 {
			return nil, errors.NewConfiguration("composite provider requires a backend chain")
		}
		backends := make([]provider.Provider, 0, len(settings.Chain))
		for _, backendKind := range settings.Chain {
			backend, err := build(backendKind, settings, true)
			if err != nil {
				return nil, err
			}
			backends = append(backends, backend)
		}
		return composite.New(backends, settings.Logger)

	default:
		return nil, errors.NewConfiguration(fmt.Sprintf("unknown provider kind %q", kind))
	}
}

// Get returns the configured provider.
func Get() (provider.Provider, error) {
	mu.Lock()
	defer mu.Unlock()
	if singleton == nil {
		return nil, errors.NewConfiguration("provider factory is not configured")
	}
	return singleton, nil
}

// Set installs a provider as the singleton.
func Set(p provider.Provider) {
	mu.Lock()
	defer mu.Unlock()
	singleton = p
}

// Reset clears the singleton. Tests call this between cases.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	singleton = nil
}
