// Package remote implements proxy.VideoService against an HTTP media
// backend.
//
// Configuration is read from MEDIAPROXY_* environment variables:
//
//	MEDIAPROXY_BASE_URL            backend root, e.g. https://media.internal
//	MEDIAPROXY_TIMEOUT             per-request timeout (default 30s)
//	MEDIAPROXY_MAX_RESPONSE_BYTES  payload cap (default 256 MiB)
//	MEDIAPROXY_PROBE_PATH          readiness path checked at construction
//	MEDIAPROXY_API_KEY             sent as X-API-Key
//	MEDIAPROXY_SIGNING_KEY         HS256 key for bearer tokens (wins over API_KEY)
//	MEDIAPROXY_KEY_ID, MEDIAPROXY_ISSUER, MEDIAPROXY_AUDIENCE, MEDIAPROXY_TOKEN_TTL
//
// Construction performs the readiness probe, which is what makes the client
// worth constructing lazily:
//
//	cfg, err := remote.LoadConfig()
//	if err != nil {
//	    return err
//	}
//	videos, err := proxy.New(remote.NewFactory(cfg))
package remote
