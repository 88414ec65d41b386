//go:build !linux

package mpris

import (
	"github.com/hashicorp/go-hclog"

	"github.com/llehouerou/vbplayer/internal/player"
)

// Adapter is a no-op on non-Linux platforms.
type Adapter struct{}

// New returns a no-op adapter on non-Linux platforms.
func New(_ player.Interface, _ string, _ hclog.Logger) (*Adapter, error) {
	return &Adapter{}, nil
}

// Resubscribe is a no-op on non-Linux platforms.
func (a *Adapter) Resubscribe(_ player.Interface, _ string) {}

// Close is a no-op on non-Linux platforms.
func (a *Adapter) Close() error {
	return nil
}
