// Package runner is the command surface for permutation test binaries. A
// generated test binary hands its suites and fixture factory to Main; the
// runner owns flag parsing, report formatting, and process exit codes.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/alecthomas/kingpin.v2"

	permrun "github.com/goliatone/go-permrun"

	"github.com/goliatone/go-permrun/pkg/lifecycle"
	"github.com/goliatone/go-permrun/pkg/persist"
	"github.com/goliatone/go-permrun/pkg/simbd"
)

// Options wires the embedding test binary into the runner.
type Options struct {
	// Name labels help output. Defaults to "permrun".
	Name string

	Suites []*permrun.Suite

	// Factory builds fixtures for executed permutations. Defaults to the
	// simbd device with file-backed persistence.
	Factory permrun.FixtureFactory

	// Geometries replaces the built-in catalog when non-nil.
	Geometries []permrun.Geometry

	// Hooks receive lifecycle events in addition to the stdout printer.
	Hooks lifecycle.Hooks

	Stdout io.Writer
	Stderr io.Writer
}

// Main runs with os.Args and exits with the resulting code.
func Main(opts Options) {
	os.Exit(Run(os.Args[1:], opts))
}

// Run parses args, performs the selected operation, and returns the process
// exit code. All fatal conditions (configuration, fixture, entry-point
// failure) return non-zero immediately; nothing is retried.
func Run(args []string, opts Options) int {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	name := opts.Name
	if name == "" {
		name = "permrun"
	}

	app := kingpin.New(name, "Run generated storage test permutations.")
	app.HelpFlag.Short('h')
	summary := app.Flag("summary", "Show quick summary.").Short('Y').Bool()
	listSuites := app.Flag("list-suites", "List test suites.").Short('l').Bool()
	listCases := app.Flag("list-cases", "List test cases.").Short('L').Bool()
	listPaths := app.Flag("list-paths", "List the path for each test case.").Bool()
	listDefines := app.Flag("list-defines", "List the defines for each test permutation.").Bool()
	listGeometries := app.Flag("list-geometries", "List the disk geometries used for testing.").Bool()
	listDefaults := app.Flag("list-defaults", "List the default defines in this runner.").Bool()
	defines := app.Flag("define", "Override a test define.").Short('D').Strings()
	geometry := app.Flag("geometry", "Filter by geometry.").Short('G').String()
	normal := app.Flag("normal", "Filter for normal tests. Can be combined.").Short('n').Bool()
	reentrant := app.Flag("reentrant", "Filter for reentrant tests. Can be combined.").Short('r').Bool()
	valgrind := app.Flag("valgrind", "Filter for Valgrind tests. Can be combined.").Short('V').Bool()
	skip := app.Flag("skip", "Skip the first n tests.").Int()
	count := app.Flag("count", "Stop after n tests.").Default("-1").Int()
	every := app.Flag("every", "Only run every n tests, calculated after --skip and --count.").Default("1").Int()
	persistPath := app.Flag("persist", "Persist the disk to this file.").Short('p').String()
	tracePath := app.Flag("trace", "Redirect device trace output to this file.").Short('t').String()
	configPath := app.Flag("config", "Load geometries and default overrides from this file.").Short('c').String()
	testID := app.Arg("test_id", "Limit the run to suite#case#perm.").String()

	if _, err := app.Parse(args); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	selection := permrun.Selection{Geometry: *geometry}
	if *normal {
		selection.Types |= permrun.TypeNormal
	}
	if *reentrant {
		selection.Types |= permrun.TypeReentrant
	}
	if *valgrind {
		selection.Types |= permrun.TypeValgrind
	}
	if *testID != "" {
		id, err := parseIdentifier(*testID)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		selection.Suite = id.Suite
		selection.Case = id.Case
		selection.Permutation = id.Permutation
		selection.PermutationSet = id.PermutationSet
	}

	// -DGEOMETRY=<name> is sugar for --geometry=<name>, not an override.
	raw := make([]string, 0, len(*defines))
	for _, define := range *defines {
		if rest, ok := strings.CutPrefix(define, "GEOMETRY="); ok {
			selection.Geometry = rest
			continue
		}
		raw = append(raw, define)
	}
	overrides, err := permrun.ParseOverrides(raw)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	catalog := opts.Geometries
	if catalog == nil {
		catalog = permrun.DefaultGeometries()
	}
	if *configPath != "" {
		cfg, err := LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		if configured := cfg.Catalog(); configured != nil {
			catalog = configured
		}
		// config defaults sit below CLI overrides: a later pair with the
		// same name wins during mapping
		overrides = append(cfg.Overrides(), overrides...)
	}

	reporter := &permrun.Reporter{
		Suites:    opts.Suites,
		Catalog:   catalog,
		Selection: selection,
		Overrides: overrides,
	}

	switch {
	case *summary:
		return printSummary(stdout, stderr, reporter)
	case *listSuites:
		return printSuites(stdout, stderr, reporter)
	case *listCases:
		return printCases(stdout, stderr, reporter)
	case *listPaths:
		return printPaths(stdout, reporter)
	case *listDefines:
		return printDefines(stdout, stderr, reporter)
	case *listGeometries:
		return printGeometries(stdout, stderr, reporter)
	case *listDefaults:
		return printDefaults(stdout, stderr, reporter)
	}

	return execute(stdout, stderr, opts, executeConfig{
		selection: selection,
		window:    permrun.Window{Skip: *skip, Count: *count, Every: *every},
		catalog:   catalog,
		overrides: overrides,
		persist:   *persistPath,
		trace:     *tracePath,
	})
}

type executeConfig struct {
	selection permrun.Selection
	window    permrun.Window
	catalog   []permrun.Geometry
	overrides []permrun.Override
	persist   string
	trace     string
}

func execute(stdout, stderr io.Writer, opts Options, cfg executeConfig) int {
	var trace io.Writer
	if cfg.trace == "-" {
		trace = stdout
	} else if cfg.trace != "" {
		file, err := os.Create(cfg.trace)
		if err != nil {
			fmt.Fprintf(stderr, "error: could not open for trace: %v\n", err)
			return 1
		}
		defer file.Close()
		trace = file
	}

	factory := opts.Factory
	if factory == nil {
		factory = simbd.Factory{Store: persist.FileStore{}, Trace: trace}
	}

	printer := lifecycle.HookFunc(func(_ context.Context, event lifecycle.Event) error {
		fmt.Fprintf(stdout, "%s %s#%d\n", event.Verb, event.CaseID, event.Index)
		return nil
	})
	hooks := append(lifecycle.Hooks{printer}, opts.Hooks...)
	emitter := lifecycle.NewEmitter(hooks, lifecycle.Config{Enabled: true})

	driver := permrun.NewDriver(opts.Suites, factory,
		permrun.WithSelection(cfg.selection),
		permrun.WithWindow(cfg.window),
		permrun.WithGeometries(cfg.catalog),
		permrun.WithOverrides(cfg.overrides),
		permrun.WithPersist(cfg.persist),
		permrun.WithLifecycleEmitter(emitter),
	)
	if err := driver.Execute(context.Background()); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func counts(admitted, selected int) string {
	return fmt.Sprintf("%d/%d", admitted, selected)
}

func printSummary(stdout, stderr io.Writer, reporter *permrun.Reporter) int {
	report, err := reporter.Summary()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "%-36s %7s %7s %7s %11s\n", "", "types", "suites", "cases", "perms")
	fmt.Fprintf(stdout, "%-36s %7s %7d %7d %11s\n",
		"TOTAL", report.Types, report.Suites, report.Cases,
		counts(report.Admitted, report.Selected))
	return 0
}

func printSuites(stdout, stderr io.Writer, reporter *permrun.Reporter) int {
	reports, err := reporter.ListSuites()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "%-36s %7s %7s %11s\n", "suite", "types", "cases", "perms")
	for _, report := range reports {
		fmt.Fprintf(stdout, "%-36s %7s %7d %11s\n",
			report.ID, report.Types, report.Cases,
			counts(report.Admitted, report.Selected))
	}
	return 0
}

func printCases(stdout, stderr io.Writer, reporter *permrun.Reporter) int {
	reports, err := reporter.ListCases()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "%-36s %7s %11s\n", "case", "types", "perms")
	for _, report := range reports {
		fmt.Fprintf(stdout, "%-36s %7s %11s\n",
			report.ID, report.Types, counts(report.Admitted, report.Selected))
	}
	return 0
}

func printPaths(stdout io.Writer, reporter *permrun.Reporter) int {
	for _, report := range reporter.ListPaths() {
		fmt.Fprintf(stdout, "%-36s %-36s\n", report.CaseID, report.Path)
	}
	return 0
}

func printDefines(stdout, stderr io.Writer, reporter *permrun.Reporter) int {
	listings, err := reporter.ListDefines()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	for _, listing := range listings {
		fmt.Fprintf(stdout, "%-36s ", fmt.Sprintf("%s#%d", listing.CaseID, listing.Index))
		fmt.Fprintf(stdout, "GEOMETRY=%s ", listing.Geometry)
		for _, define := range listing.Defines {
			fmt.Fprintf(stdout, "%s=%d ", define.Name, define.Value)
		}
		fmt.Fprintln(stdout)
	}
	return 0
}

func printGeometries(stdout, stderr io.Writer, reporter *permrun.Reporter) int {
	reports, err := reporter.ListGeometries()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	for _, report := range reports {
		fmt.Fprintf(stdout, "%-36s ", report.Name)
		for _, define := range report.Defines {
			fmt.Fprintf(stdout, "%s=%d ", define.Name, define.Value)
		}
		fmt.Fprintln(stdout)
	}
	return 0
}

func printDefaults(stdout, stderr io.Writer, reporter *permrun.Reporter) int {
	defaults, err := reporter.ListDefaults()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "%-36s ", "defaults")
	for _, define := range defaults {
		fmt.Fprintf(stdout, "%s=%d ", define.Name, define.Value)
	}
	fmt.Fprintln(stdout)
	return 0
}
