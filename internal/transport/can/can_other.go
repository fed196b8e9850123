//go:build !linux

package can

import (
	"context"
	"fmt"

	"github.com/commwatch/commwatch/internal/model"
	"github.com/commwatch/commwatch/internal/transport"
)

// ListDevices returns only the simulator device: SocketCAN is
// Linux-only, per spec §4.3.2's "systems without CAN support" case.
func (a *Adapter) ListDevices(ctx context.Context) ([]model.DeviceInfo, error) {
	return []model.DeviceInfo{simulatorDevice()}, nil
}

// Open always fails: there is no real CAN transport on this platform.
func (a *Adapter) Open(ctx context.Context, device model.DeviceInfo, opts model.AdapterOpenOptions) (transport.Handle, error) {
	return nil, fmt.Errorf("can: real hardware access is not supported on this platform")
}
