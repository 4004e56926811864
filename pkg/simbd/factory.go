// Package simbd provides a RAM-backed simulated block device honoring the
// geometry a permutation resolves to. It is the reference fixture for the
// execution driver; real deployments substitute their own simulator.
package simbd

import (
	"fmt"
	"io"

	permrun "github.com/goliatone/go-permrun"

	"github.com/goliatone/go-permrun/pkg/persist"
)

// Factory builds devices for resolved geometries.
type Factory struct {
	// Store persists device contents when the fixture config names a
	// persistence key. Nil disables persistence.
	Store persist.Store

	// Trace receives one line per device operation when non-nil.
	Trace io.Writer
}

// New implements permrun.FixtureFactory. A geometry the simulator cannot
// honor fails construction; the driver treats that as fatal.
func (f Factory) New(cfg permrun.FixtureConfig) (permrun.Fixture, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return newDevice(cfg, f.Store, f.Trace)
}

func validate(cfg permrun.FixtureConfig) error {
	switch {
	case cfg.ReadSize <= 0:
		return fmt.Errorf("simbd: invalid read size %d", cfg.ReadSize)
	case cfg.ProgSize <= 0:
		return fmt.Errorf("simbd: invalid prog size %d", cfg.ProgSize)
	case cfg.BlockSize <= 0:
		return fmt.Errorf("simbd: invalid block size %d", cfg.BlockSize)
	case cfg.BlockCount <= 0:
		return fmt.Errorf("simbd: invalid block count %d", cfg.BlockCount)
	case cfg.BlockSize%cfg.ReadSize != 0:
		return fmt.Errorf("simbd: block size %d not a multiple of read size %d",
			cfg.BlockSize, cfg.ReadSize)
	case cfg.BlockSize%cfg.ProgSize != 0:
		return fmt.Errorf("simbd: block size %d not a multiple of prog size %d",
			cfg.BlockSize, cfg.ProgSize)
	case cfg.EraseValue < 0 || cfg.EraseValue > 0xff:
		return fmt.Errorf("simbd: erase value %#x does not fit a byte", cfg.EraseValue)
	}
	return nil
}
