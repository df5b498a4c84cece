//go:build !linux

package platform

import "log/slog"

func NewBackend(log *slog.Logger, opts Options) (Backend, error) {
	return nil, ErrUnsupported
}
