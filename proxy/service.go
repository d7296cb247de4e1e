package proxy

import (
	"context"
	"fmt"
)

// VideoService fetches compressed media by video ID and quality.
//
// Contract:
//   - A nil error must come with a non-nil slice. An empty slice is a valid
//     payload.
//   - Context: implementations should honor cancellation.
type VideoService interface {
	DownloadCompressed(ctx context.Context, videoID, quality string) ([]byte, error)
}

// Factory constructs the real VideoService. A nil service with a nil error
// is treated as a failure.
type Factory func() (VideoService, error)

// ServiceFunc adapts an ordinary function to a VideoService.
type ServiceFunc func(ctx context.Context, videoID, quality string) ([]byte, error)

// DownloadCompressed calls f.
func (f ServiceFunc) DownloadCompressed(ctx context.Context, videoID, quality string) ([]byte, error) {
	return f(ctx, videoID, quality)
}

// UntypedService is a collaborator whose results are not statically typed,
// such as a scripted backend or a decoded RPC payload.
type UntypedService interface {
	DownloadCompressed(ctx context.Context, videoID, quality string) (any, error)
}

// FromUntyped adapts an UntypedService. Results other than a non-nil []byte
// are reported as ErrContractViolation. A nil svc yields a nil VideoService.
func FromUntyped(svc UntypedService) VideoService {
	if svc == nil {
		return nil
	}
	return untypedService{svc: svc}
}

type untypedService struct {
	svc UntypedService
}

func (u untypedService) DownloadCompressed(ctx context.Context, videoID, quality string) ([]byte, error) {
	v, err := u.svc.DownloadCompressed(ctx, videoID, quality)
	if err != nil {
		return nil, err
	}
	data, ok := v.([]byte)
	if !ok || data == nil {
		return nil, fmt.Errorf("%w: got %T", ErrContractViolation, v)
	}
	return data, nil
}

var (
	_ VideoService = ServiceFunc(nil)
	_ VideoService = untypedService{}
)
