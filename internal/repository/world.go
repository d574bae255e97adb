package repository

import "context"

// World defines the interface for the virtual world clock. Time is in
// world-seconds, monotonically non-decreasing, advanced by the host.
type World interface {
	GetWorldTime(ctx context.Context) (int64, error)
	SetWorldTime(ctx context.Context, worldTime int64) error
}
