package permrun

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-permrun/pkg/lifecycle"
)

// Fixture is one isolated simulated-storage instance, scoped strictly to a
// single executed permutation. Close releases it and must run on every exit
// path.
type Fixture interface {
	Close() error
}

// FixtureConfig carries the resolved predefine values a fixture is
// parameterized with.
type FixtureConfig struct {
	ReadSize         Value
	ProgSize         Value
	BlockSize        Value
	BlockCount       Value
	BlockCycles      Value
	CacheSize        Value
	LookaheadSize    Value
	EraseValue       Value
	EraseCycles      Value
	BadBlockBehavior Value

	// Persist names where the simulator should keep device state across
	// runs. Empty means throwaway state.
	Persist string
}

// FixtureFactory builds fixtures for resolved geometries. A construction
// error means the simulator cannot honor the geometry; the driver treats it
// as fatal.
type FixtureFactory interface {
	New(cfg FixtureConfig) (Fixture, error)
}

// FixtureFactoryFunc adapts a function to FixtureFactory.
type FixtureFactoryFunc func(cfg FixtureConfig) (Fixture, error)

// New implements FixtureFactory.
func (fn FixtureFactoryFunc) New(cfg FixtureConfig) (Fixture, error) {
	return fn(cfg)
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithSelection filters which suites, cases, and permutations the driver
// considers.
func WithSelection(selection Selection) DriverOption {
	return func(d *Driver) {
		d.selection = selection
	}
}

// WithWindow limits which selected permutations execute.
func WithWindow(window Window) DriverOption {
	return func(d *Driver) {
		d.window = window
	}
}

// WithGeometries replaces the built-in geometry catalog.
func WithGeometries(catalog []Geometry) DriverOption {
	return func(d *Driver) {
		d.catalog = catalog
	}
}

// WithOverrides installs user-supplied define overrides as the strongest
// layer.
func WithOverrides(overrides []Override) DriverOption {
	return func(d *Driver) {
		d.overrides = overrides
	}
}

// WithLifecycleEmitter wires a notification emitter for the
// running/finished/skipped stream.
func WithLifecycleEmitter(emitter *lifecycle.Emitter) DriverOption {
	return func(d *Driver) {
		d.emitter = emitter
	}
}

// WithPersist forwards a persistence location to every fixture the driver
// builds.
func WithPersist(persist string) DriverOption {
	return func(d *Driver) {
		d.persist = persist
	}
}

// WithContext substitutes a caller-owned resolution context. The driver
// mutates it between permutations; it must not be shared with another
// concurrent driver.
func WithContext(ctx *Context) DriverOption {
	return func(d *Driver) {
		d.resolution = ctx
	}
}

// Driver walks every admitted, windowed permutation of the selected suites
// and cases, building a fresh fixture around each entry-point invocation.
// Execution is single threaded: one permutation fully completes, teardown
// included, before the next begins.
type Driver struct {
	suites     []*Suite
	factory    FixtureFactory
	resolution *Context
	catalog    []Geometry
	selection  Selection
	window     Window
	overrides  []Override
	emitter    *lifecycle.Emitter
	persist    string
	runID      string
}

// NewDriver constructs a driver over the given suites and fixture factory.
func NewDriver(suites []*Suite, factory FixtureFactory, opts ...DriverOption) *Driver {
	d := &Driver{
		suites:     suites,
		factory:    factory,
		resolution: NewContext(),
		catalog:    DefaultGeometries(),
		window:     DefaultWindow(),
		runID:      uuid.NewString(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Execute runs every admitted, windowed permutation. The first fatal error
// aborts the whole run; predicate rejections only produce skipped events.
//
// The step counter advances for every selected index reaching the window
// precondition, so a permutation the predicate later rejects still consumes
// its window slot.
func (d *Driver) Execute(ctx context.Context) error {
	d.resolution.SetOverrides(d.overrides)
	enum := &Enumerator{Context: d.resolution, Catalog: d.catalog, Selection: d.selection}

	step := 0
	for _, suite := range d.suites {
		if !d.selection.MatchSuite(suite) {
			continue
		}
		d.resolution.SetSuite(suite)

		for _, kase := range suite.Cases {
			if !d.selection.MatchCase(kase) {
				continue
			}
			d.resolution.SetCase(kase)

			err := enum.VisitSelected(kase, func(index int) error {
				if !d.window.Admits(step) {
					step++
					return nil
				}
				step++

				casePerm, geometry := enum.install(kase, index)
				admitted, err := enum.admit(kase, casePerm)
				if err != nil {
					return err
				}
				if !admitted {
					d.emit(ctx, lifecycle.VerbSkipped, suite, kase, index, casePerm, geometry)
					return nil
				}
				return d.executeOne(ctx, suite, kase, index, casePerm, geometry)
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Driver) executeOne(ctx context.Context, suite *Suite, kase *Case, index, casePerm, geometry int) error {
	cfg, err := d.fixtureConfig()
	if err != nil {
		return err
	}

	fixture, err := d.factory.New(cfg)
	if err != nil {
		return &FixtureError{CaseID: kase.ID, Index: index, Op: "create", Err: err}
	}

	d.emit(ctx, lifecycle.VerbRunning, suite, kase, index, casePerm, geometry)

	runErr := kase.Run(&Run{
		Context:     d.resolution,
		Fixture:     fixture,
		Permutation: casePerm,
		Index:       index,
	})
	if runErr != nil {
		_ = fixture.Close()
		return fmt.Errorf("permrun: %s#%d: %w", kase.ID, index, runErr)
	}

	d.emit(ctx, lifecycle.VerbFinished, suite, kase, index, casePerm, geometry)

	if err := fixture.Close(); err != nil {
		return &FixtureError{CaseID: kase.ID, Index: index, Op: "destroy", Err: err}
	}
	return nil
}

// fixtureConfig resolves every predefine the simulator needs. A key no layer
// defines surfaces here as a fatal ConfigurationError.
func (d *Driver) fixtureConfig() (FixtureConfig, error) {
	cfg := FixtureConfig{Persist: d.persist}
	for _, field := range []struct {
		key PredefineKey
		dst *Value
	}{
		{ReadSize, &cfg.ReadSize},
		{ProgSize, &cfg.ProgSize},
		{BlockSize, &cfg.BlockSize},
		{BlockCount, &cfg.BlockCount},
		{BlockCycles, &cfg.BlockCycles},
		{CacheSize, &cfg.CacheSize},
		{LookaheadSize, &cfg.LookaheadSize},
		{EraseValue, &cfg.EraseValue},
		{EraseCycles, &cfg.EraseCycles},
		{BadBlockBehavior, &cfg.BadBlockBehavior},
	} {
		value, err := d.resolution.Predefine(field.key)
		if err != nil {
			return FixtureConfig{}, err
		}
		*field.dst = value
	}
	return cfg, nil
}

// emit publishes a lifecycle notification. Notification failures never abort
// a run; the stream feeds presentation, not control flow.
func (d *Driver) emit(ctx context.Context, verb string, suite *Suite, kase *Case, index, casePerm, geometry int) {
	if d.emitter == nil {
		return
	}
	_ = d.emitter.Emit(ctx, lifecycle.Event{
		Verb:        verb,
		SuiteID:     suite.ID,
		CaseID:      kase.ID,
		Index:       index,
		Permutation: casePerm,
		Geometry:    d.catalog[geometry].Name,
		RunID:       d.runID,
	})
}
