package remote

import (
	"context"

	"github.com/jonwraymond/mediaproxy/proxy"
)

// NewFactory returns a proxy.Factory that builds a Client from cfg.
// The probe runs under cfg.Timeout since factories take no context.
func NewFactory(cfg Config, opts ...ClientOption) proxy.Factory {
	return func() (proxy.VideoService, error) {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		c, err := NewClient(ctx, cfg, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}
