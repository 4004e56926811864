package simbd

import (
	"context"
	"errors"
	"fmt"
	"io"

	permrun "github.com/goliatone/go-permrun"

	"github.com/goliatone/go-permrun/pkg/persist"
)

// Wear behaviors once a block exceeds its erase cycles.
const (
	BadBlockProgError permrun.Value = iota
	BadBlockEraseError
	BadBlockReadError
	BadBlockProgNoop
)

// ErrBadBlock reports an operation against a block worn past its erase
// cycles.
var ErrBadBlock = errors.New("simbd: bad block")

// Device is a single simulated storage instance. It is not safe for
// concurrent use; the driver scopes each device to one permutation.
type Device struct {
	cfg   permrun.FixtureConfig
	store persist.Store
	trace io.Writer

	blocks []byte
	wear   []permrun.Value
}

func newDevice(cfg permrun.FixtureConfig, store persist.Store, trace io.Writer) (*Device, error) {
	d := &Device{
		cfg:    cfg,
		store:  store,
		trace:  trace,
		blocks: make([]byte, cfg.BlockCount*cfg.BlockSize),
		wear:   make([]permrun.Value, cfg.BlockCount),
	}
	for i := range d.blocks {
		d.blocks[i] = byte(cfg.EraseValue)
	}

	if cfg.Persist != "" && store != nil {
		snapshot, ok, err := store.Load(context.Background(), cfg.Persist)
		if err != nil {
			return nil, fmt.Errorf("simbd: could not load %q: %w", cfg.Persist, err)
		}
		if ok {
			if len(snapshot) != len(d.blocks) {
				return nil, fmt.Errorf("simbd: persisted disk %q is %d bytes, geometry wants %d",
					cfg.Persist, len(snapshot), len(d.blocks))
			}
			copy(d.blocks, snapshot)
		}
	}
	return d, nil
}

// Read copies data out of a block. Offset and length must respect the read
// granularity.
func (d *Device) Read(block, off permrun.Value, buf []byte) error {
	d.tracef("simbd read %d %d %d", block, off, len(buf))
	if err := d.check(block, off, permrun.Value(len(buf)), d.cfg.ReadSize); err != nil {
		return err
	}
	if d.worn(block) && d.cfg.BadBlockBehavior == BadBlockReadError {
		return ErrBadBlock
	}
	start := block*d.cfg.BlockSize + off
	copy(buf, d.blocks[start:start+permrun.Value(len(buf))])
	return nil
}

// Prog writes data into a block. Offset and length must respect the program
// granularity.
func (d *Device) Prog(block, off permrun.Value, data []byte) error {
	d.tracef("simbd prog %d %d %d", block, off, len(data))
	if err := d.check(block, off, permrun.Value(len(data)), d.cfg.ProgSize); err != nil {
		return err
	}
	if d.worn(block) {
		switch d.cfg.BadBlockBehavior {
		case BadBlockProgError:
			return ErrBadBlock
		case BadBlockProgNoop:
			return nil
		}
	}
	start := block*d.cfg.BlockSize + off
	copy(d.blocks[start:], data)
	return nil
}

// Erase resets a block to the erase value and counts wear against it.
func (d *Device) Erase(block permrun.Value) error {
	d.tracef("simbd erase %d", block)
	if block < 0 || block >= d.cfg.BlockCount {
		return fmt.Errorf("simbd: block %d out of range", block)
	}
	d.wear[block]++
	if d.worn(block) && d.cfg.BadBlockBehavior == BadBlockEraseError {
		return ErrBadBlock
	}
	start := block * d.cfg.BlockSize
	for i := start; i < start+d.cfg.BlockSize; i++ {
		d.blocks[i] = byte(d.cfg.EraseValue)
	}
	return nil
}

// Sync is a no-op for the RAM device but keeps the block-device contract
// complete.
func (d *Device) Sync() error {
	d.tracef("simbd sync")
	return nil
}

// Close implements permrun.Fixture, persisting the disk when configured.
func (d *Device) Close() error {
	d.tracef("simbd close")
	if d.cfg.Persist == "" || d.store == nil {
		return nil
	}
	if err := d.store.Save(context.Background(), d.cfg.Persist, d.blocks); err != nil {
		return fmt.Errorf("simbd: could not persist %q: %w", d.cfg.Persist, err)
	}
	return nil
}

// Wear reports how many times a block has been erased.
func (d *Device) Wear(block permrun.Value) permrun.Value {
	if block < 0 || block >= d.cfg.BlockCount {
		return 0
	}
	return d.wear[block]
}

func (d *Device) worn(block permrun.Value) bool {
	return d.cfg.EraseCycles > 0 && d.wear[block] > d.cfg.EraseCycles
}

func (d *Device) check(block, off, size, granularity permrun.Value) error {
	switch {
	case block < 0 || block >= d.cfg.BlockCount:
		return fmt.Errorf("simbd: block %d out of range", block)
	case off < 0 || off+size > d.cfg.BlockSize:
		return fmt.Errorf("simbd: region [%d,%d) exceeds block size %d", off, off+size, d.cfg.BlockSize)
	case off%granularity != 0 || size%granularity != 0:
		return fmt.Errorf("simbd: region [%d,%d) not aligned to %d", off, off+size, granularity)
	}
	return nil
}

func (d *Device) tracef(format string, args ...any) {
	if d.trace == nil {
		return
	}
	fmt.Fprintf(d.trace, format+"\n", args...)
}
