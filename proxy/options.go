package proxy

import (
	"fmt"

	"github.com/jonwraymond/mediaproxy/cache"
	"github.com/jonwraymond/mediaproxy/observe"
	"github.com/jonwraymond/mediaproxy/resilience"
)

// DefaultName is the health checker name used when WithName is not given.
const DefaultName = "video-proxy"

// Option configures a ProxyVideoService.
type Option func(*ProxyVideoService) error

// WithStore replaces the default in-memory store.
func WithStore(store cache.Store) Option {
	return func(p *ProxyVideoService) error {
		if store == nil {
			return fmt.Errorf("%w: %w", ErrInvalidArgument, cache.ErrNilStore)
		}
		p.store = store
		return nil
	}
}

// WithKeyer replaces the keyer that derives per-key flight identifiers.
func WithKeyer(keyer cache.Keyer) Option {
	return func(p *ProxyVideoService) error {
		if keyer == nil {
			return fmt.Errorf("%w: keyer is nil", ErrInvalidArgument)
		}
		p.keyer = keyer
		return nil
	}
}

// WithMiddleware sets the telemetry middleware. Nil disables telemetry.
func WithMiddleware(mw *observe.Middleware) Option {
	return func(p *ProxyVideoService) error {
		if mw == nil {
			mw = observe.NopMiddleware()
		}
		p.mw = mw
		return nil
	}
}

// WithObserver builds the telemetry middleware from obs.
func WithObserver(obs observe.Observer) Option {
	return func(p *ProxyVideoService) error {
		mw, err := observe.MiddlewareFromObserver(obs)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
		p.mw = mw
		return nil
	}
}

// WithExecutor wraps every delegated fetch in e.
func WithExecutor(e *resilience.Executor) Option {
	return func(p *ProxyVideoService) error {
		p.exec = e
		return nil
	}
}

// WithName sets the name reported by the health checker.
func WithName(name string) Option {
	return func(p *ProxyVideoService) error {
		if name == "" {
			return fmt.Errorf("%w: name is empty", ErrInvalidArgument)
		}
		p.name = name
		return nil
	}
}
