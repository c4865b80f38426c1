package device

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/GoSim-25-26J-441/labplan/pkg/logger"
)

// Connection is a scoped, exclusive handle on one plate reader. The zero value
// is not usable; create one with NewConnection.
type Connection struct {
	reader PlateReader
	access *semaphore.Weighted
	logger *slog.Logger

	mu       sync.RWMutex
	deviceID string
}

// NewConnection wraps a driver. Nothing is opened until Connect.
func NewConnection(reader PlateReader) *Connection {
	return &Connection{
		reader: reader,
		access: semaphore.NewWeighted(1),
		logger: logger.Component("plate_reader"),
	}
}

// Connect opens the first discovered device. Connecting twice keeps the
// existing device.
func (c *Connection) Connect(ctx context.Context) (string, error) {
	release, err := c.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	if id, ok := c.DeviceID(); ok {
		return id, nil
	}

	devices, err := c.reader.Devices(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list devices: %w", err)
	}
	if len(devices) == 0 {
		return "", ErrNoDevices
	}

	c.mu.Lock()
	c.deviceID = devices[0]
	c.mu.Unlock()
	c.logger.Info("plate reader connected", "device_id", devices[0], "available", len(devices))
	return devices[0], nil
}

// Disconnect releases the device. It waits for an in-flight operation to finish.
func (c *Connection) Disconnect(ctx context.Context) error {
	release, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deviceID == "" {
		return ErrNotConnected
	}
	c.logger.Info("plate reader disconnected", "device_id", c.deviceID)
	c.deviceID = ""
	return nil
}

// DeviceID returns the connected device, if any
func (c *Connection) DeviceID() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.deviceID, c.deviceID != ""
}

// Initialize prepares a single measurement. The drawer must be empty and the
// wavelength supported.
func (c *Connection) Initialize(ctx context.Context, wavelength int) error {
	release, id, err := c.begin(ctx)
	if err != nil {
		return err
	}
	defer release()

	state, err := c.reader.SlotState(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to read slot state: %w", err)
	}
	if state != SlotEmpty {
		return &SlotError{Step: StepInitialize, State: state}
	}

	available, err := c.reader.Wavelengths(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to read wavelengths: %w", err)
	}
	if err := checkWavelength(wavelength, available); err != nil {
		return err
	}

	if err := c.reader.InitializeMeasurement(ctx, id, wavelength); err != nil {
		return fmt.Errorf("initialize failed: %w", err)
	}
	c.logger.Info("measurement initialized", "device_id", id, "wavelength", wavelength)
	return nil
}

// Measure reads the inserted plate. The drawer must be occupied.
func (c *Connection) Measure(ctx context.Context, wavelength int) ([]float64, error) {
	release, id, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	state, err := c.reader.SlotState(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read slot state: %w", err)
	}
	if state == SlotEmpty {
		return nil, &SlotError{Step: StepMeasure, State: state}
	}

	values, err := c.reader.Measure(ctx, id, wavelength)
	if err != nil {
		return nil, fmt.Errorf("measurement failed: %w", err)
	}
	c.logger.Info("plate measured", "device_id", id, "wavelength", wavelength, "wells", len(values))
	return values, nil
}

func (c *Connection) begin(ctx context.Context) (func(), string, error) {
	release, err := c.acquire(ctx)
	if err != nil {
		return nil, "", err
	}
	id, ok := c.DeviceID()
	if !ok {
		release()
		return nil, "", ErrNotConnected
	}
	return release, id, nil
}

func (c *Connection) acquire(ctx context.Context) (func(), error) {
	if err := c.access.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceBusy, err)
	}
	return func() { c.access.Release(1) }, nil
}
