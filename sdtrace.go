package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"sort"

	"github.com/phil-mansfield/sdtrace/lib/config"
	"github.com/phil-mansfield/sdtrace/lib/diag"
	g_error "github.com/phil-mansfield/sdtrace/lib/error"
	"github.com/phil-mansfield/sdtrace/lib/euler"
	"github.com/phil-mansfield/sdtrace/lib/export"
	"github.com/phil-mansfield/sdtrace/lib/format"
	"github.com/phil-mansfield/sdtrace/lib/lagrange"
	"github.com/phil-mansfield/sdtrace/lib/ragged"
	"github.com/phil-mansfield/sdtrace/lib/supers"
)

const helpText = `sdtrace converts ragged superdroplet output into dense Lagrangian
tables, traces chosen superdroplets through time, and rebins superdroplets
by an integer attribute such as their gridbox.

Usage:
    sdtrace <mode> <config file> [--Var1 value1] [--Var2 value2] ...

Modes:
    help            print this message.
    example_config  print an example config file with every variable.
    check           check the config file and the shapes of every attribute.
    lagrangian      write every attribute as a time x sdId NetCDF table.
    trace           write the trajectories of chosen superdroplets as CSV.
    eulerian        rebin attributes by the Indexer attribute and write
                    per-bucket counts, sums and means as CSV.

Any config variable can be overridden on the command line. Multi-valued
variables take comma-separated lists, e.g. --Attributes radius,xi.`

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		g_error.External("No mode was given. Run 'sdtrace help' for usage.")
	}
	mode := os.Args[1]

	switch mode {
	case "help":
		fmt.Println(helpText)
		return
	case "example_config":
		fmt.Print(config.ExampleConfig)
		return
	}

	if len(os.Args) < 3 {
		g_error.External("The '%s' mode needs a config file. Run "+
			"'sdtrace help' for usage.", mode)
	}
	over, err := config.Overrides(os.Args[3:])
	if err != nil {
		g_error.External("%s", err.Error())
	}
	c, warns, err := config.Read(os.Args[2], over)
	for _, w := range warns {
		logger.Warn("config", "file", os.Args[2], "warning", w.Error())
	}
	if err != nil {
		g_error.External("%s", err.Error())
	}
	if err := c.Validate(mode); err != nil {
		g_error.External("%s", err.Error())
	}

	if err := run(mode, &c.Sdtrace, logger); err != nil {
		g_error.External("%s", err.Error())
	}
}

// run runs one of the data modes.
func run(mode string, v *config.Vars, log *slog.Logger) error {
	ds, err := load(v, log)
	if err != nil {
		return err
	}
	sink := diag.Logger{Log: log}

	switch mode {
	case "check":
		return Check(ds, v)
	case "lagrangian":
		return Lagrangian(ds, v, sink, log)
	case "trace":
		return Trace(ds, v, log)
	case "eulerian":
		return Eulerian(ds, v, log)
	}
	return fmt.Errorf("Unrecognized mode '%s'.", mode)
}

// load reads the dataset, adds derived properties when possible and applies
// the rain filter.
func load(v *config.Vars, log *slog.Logger) (*supers.Dataset, error) {
	ds, err := supers.Open(v.Dataset)
	if err != nil {
		return nil, err
	}
	log.Info("loaded dataset", "file", v.Dataset, "times", len(ds.Time),
		"values", ds.Total(), "attributes", ds.Names())

	consts, err := supers.LoadConsts(v.Consts)
	if err != nil {
		return nil, err
	}
	_, hasR := ds.Fields[supers.Radius]
	_, hasMsol := ds.Fields[supers.Msol]
	if hasR && hasMsol {
		if err := supers.NewProperties(consts).Derive(ds); err != nil {
			return nil, err
		}
	}

	if v.Rain {
		ds, err = supers.Rain(ds, v.RainRadius)
		if err != nil {
			return nil, err
		}
		log.Info("applied rain filter", "radius", v.RainRadius,
			"values", ds.Total())
	}
	return ds, nil
}

// outputName expands the Output format for one file.
func outputName(v *config.Vars, mode, attr string) (string, error) {
	return format.ExpandFile(v.Output, map[string]string{
		"mode": mode, "attribute": attr,
	})
}

// Check reports the shape of every attribute and whether it can be used as
// an indexer. It fails if the dataset is inconsistent or if a superdroplet
// appears twice at one time.
func Check(ds *supers.Dataset, v *config.Vars) error {
	if err := ds.Validate(); err != nil {
		return err
	}

	names := v.Attributes
	if len(names) == 0 {
		names = ds.Names()
	}
	for _, name := range names {
		a, err := ds.Float64(name)
		if err != nil {
			return err
		}
		_, err = ds.Indexer(name)
		integral := err == nil
		fmt.Printf("%-12s %-4s %-12s %-10s integral = %t\n", name,
			ds.Fields[name].Type(), ragged.FormatShape(ragged.Shape(a)),
			ds.Units[name], integral)
	}

	ids, err := ds.IDs()
	if err != nil {
		return err
	}
	if err := lagrange.CheckUnique(ids); err != nil {
		return fmt.Errorf("The %s attribute is not a valid identifier: %w",
			supers.SdID, err)
	}

	fmt.Println("No errors detected.")
	return nil
}

// Lagrangian writes every attribute as a dense time x sdId table.
func Lagrangian(
	ds *supers.Dataset, v *config.Vars, sink diag.Sink, log *slog.Logger,
) error {
	ids, err := ds.IDs()
	if err != nil {
		return err
	}

	opt := lagrange.FloatOptions()
	opt.Sink = sink
	if v.EnforceUniqueness {
		opt.Uniqueness = lagrange.EnforceUnique
	}

	times := ds.Time
	var outer []int
	if v.KeyedRows {
		outer, err = nearest(ds.Time, v.Times)
		if err != nil {
			return err
		}
		keys := make([]int64, len(outer))
		for i := range keys {
			keys[i] = int64(outer[i])
		}
		opt.Rows = lagrange.KeyedRows(ragged.Flat(keys))
		times = ds.Time[:outer[len(outer)-1]+1]
		if ids, err = ragged.SelectOuter(ids, outer); err != nil {
			return err
		}
	}

	tables := map[string]*lagrange.Table[float64]{}
	for _, name := range v.Attributes {
		data, err := ds.Float64(name)
		if err != nil {
			return err
		}
		if outer != nil {
			if data, err = ragged.SelectOuter(data, outer); err != nil {
				return err
			}
		}
		t, err := lagrange.ToDense(data, ids, opt)
		if err != nil {
			return fmt.Errorf("Could not convert '%s': %w", name, err)
		}
		tables[name] = t
		log.Info("converted attribute", "attribute", name, "rows", t.Rows,
			"cols", t.Cols, "present", t.Present())
	}

	fname, err := outputName(v, "lagrangian", "all")
	if err != nil {
		return err
	}
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.WriteNetCDF(f, times, tables, ds.Units); err != nil {
		return err
	}
	log.Info("wrote output", "file", fname)
	return f.Close()
}

// nearest returns the sorted, distinct output indices closest to sel.
func nearest(time, sel []float64) ([]int, error) {
	idx, err := lagrange.NearestTimes(time, sel)
	if err != nil {
		return nil, err
	}
	sort.Ints(idx)
	out := idx[:0]
	for i, j := range idx {
		if i == 0 || j != idx[i-1] {
			out = append(out, j)
		}
	}
	return out, nil
}

// targets returns the identifiers to trace.
func targets(v *config.Vars) ([]int64, error) {
	if v.IDs != "" {
		seq, err := format.ExpandSequence(v.IDs)
		if err != nil {
			return nil, err
		}
		out := make([]int64, len(seq))
		for i := range out {
			out[i] = int64(seq[i])
		}
		return out, nil
	}
	rng := rand.New(rand.NewSource(v.Seed))
	return lagrange.SampleIDs(rng, v.MinID, v.MaxID, v.Samples)
}

// Trace writes the trajectories of the chosen superdroplets to a CSV file.
func Trace(ds *supers.Dataset, v *config.Vars, log *slog.Logger) error {
	ids, err := ds.IDs()
	if err != nil {
		return err
	}
	sel, err := targets(v)
	if err != nil {
		return err
	}

	times := ds.Time
	var rows []int
	if len(v.Times) > 0 {
		if rows, err = lagrange.NearestTimes(ds.Time, v.Times); err != nil {
			return err
		}
		times = make([]float64, len(rows))
		for i, r := range rows {
			times[i] = ds.Time[r]
		}
	}

	tables := map[string]*lagrange.Table[float64]{}
	for _, name := range v.Attributes {
		data, err := ds.Float64(name)
		if err != nil {
			return err
		}
		t, err := lagrange.TrajectoriesFor(data, ids, sel, math.NaN())
		if err != nil {
			return fmt.Errorf("Could not trace '%s': %w", name, err)
		}
		if rows != nil {
			if t, err = lagrange.SelectRows(t, rows); err != nil {
				return err
			}
		}
		tables[name] = t
	}

	fname, err := outputName(v, "trace", "all")
	if err != nil {
		return err
	}
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.WriteTrajectoriesCSV(f, times, tables); err != nil {
		return err
	}
	log.Info("wrote output", "file", fname, "superdroplets", len(sel))
	return f.Close()
}

// Eulerian rebins every attribute by the Indexer attribute and writes the
// statistics of each bucket to one CSV file per attribute.
func Eulerian(ds *supers.Dataset, v *config.Vars, log *slog.Logger) error {
	idx, err := ds.Indexer(v.Indexer)
	if err != nil {
		return err
	}

	for _, name := range v.Attributes {
		data, err := ds.Float64(name)
		if err != nil {
			return err
		}

		rebinned, err := euler.Rebin(data, idx, euler.Options{
			Bins: v.Bins, Workers: v.Threads,
		})
		if errors.Is(err, ragged.ErrInvalidIndex) {
			return fmt.Errorf("Could not rebin '%s' by '%s'. The indexer "+
				"must be non-negative and smaller than Bins = %d: %w",
				name, v.Indexer, v.Bins, err)
		} else if err != nil {
			return fmt.Errorf("Could not rebin '%s': %w", name, err)
		}

		fname, err := outputName(v, "eulerian", name)
		if err != nil {
			return err
		}
		if err := writeBuckets(fname, ds.Time, rebinned); err != nil {
			return err
		}
		log.Info("wrote output", "file", fname, "attribute", name,
			"buckets", rebinned.Buckets(),
			"total", euler.Sum(rebinned.Values))
	}
	return nil
}

func writeBuckets(fname string, times []float64, a *ragged.Array[float64]) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.WriteBucketsCSV(f, times, a); err != nil {
		return fmt.Errorf("Could not write %s: %w", fname, err)
	}
	return f.Close()
}
