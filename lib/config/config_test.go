package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, text string) string {
	fname := filepath.Join(t.TempDir(), "sdtrace.config")
	require.NoError(t, os.WriteFile(fname, []byte(text), 0644))
	return fname
}

func TestRead(t *testing.T) {
	fname := writeConfig(t, `[sdtrace]
Dataset = run.sds
Attributes = radius
Attributes = xi
Times = 0
Times = 2.5
IDs = 0..10 - 5
EnforceUniqueness = true
Bins = 20
`)
	c, warns, err := Read(fname, "")
	require.NoError(t, err)
	require.Empty(t, warns)

	v := c.Sdtrace
	require.Equal(t, "run.sds", v.Dataset)
	require.Equal(t, []string{"radius", "xi"}, v.Attributes)
	require.Equal(t, []float64{0, 2.5}, v.Times)
	require.Equal(t, "0..10 - 5", v.IDs)
	require.True(t, v.EnforceUniqueness)
	require.Equal(t, 20, v.Bins)

	// Defaults survive.
	require.Equal(t, "sdgbxindex", v.Indexer)
	require.Equal(t, 40.0, v.RainRadius)
}

func TestReadExample(t *testing.T) {
	c, warns, err := Read(writeConfig(t, ExampleConfig), "")
	require.NoError(t, err)
	require.Empty(t, warns)
	require.NoError(t, c.Validate("lagrangian"))
	require.NoError(t, c.Validate("eulerian"))
}

func TestReadWarnings(t *testing.T) {
	fname := writeConfig(t, `[sdtrace]
Dataset = run.sds
Snapshots = 0..10
`)
	c, warns, err := Read(fname, "")
	require.NoError(t, err)
	require.Len(t, warns, 1)
	require.Equal(t, "run.sds", c.Sdtrace.Dataset)

	bad := writeConfig(t, "[sdtrace]\nBins = many\n")
	_, _, err = Read(bad, "")
	require.Error(t, err)

	_, _, err = Read(filepath.Join(t.TempDir(), "missing.config"), "")
	require.Error(t, err)
}

func TestOverrides(t *testing.T) {
	fname := writeConfig(t, `[sdtrace]
Dataset = run.sds
Attributes = radius
Attributes = xi
Bins = 20
`)
	over, err := Overrides([]string{
		"--Bins", "5", "--Attributes", "coord3, msol", "--Output", "a b.csv",
	})
	require.NoError(t, err)

	c, warns, err := Read(fname, over)
	require.NoError(t, err)
	require.Empty(t, warns)
	require.Equal(t, 5, c.Sdtrace.Bins)
	require.Equal(t, []string{"coord3", "msol"}, c.Sdtrace.Attributes)
	require.Equal(t, "a b.csv", c.Sdtrace.Output)
	require.Equal(t, "run.sds", c.Sdtrace.Dataset)

	over, err = Overrides([]string{"--Attributes", "xi", "--Times", "1.5,3"})
	require.NoError(t, err)
	c, _, err = Read(fname, over)
	require.NoError(t, err)
	require.Equal(t, []string{"xi"}, c.Sdtrace.Attributes)
	require.Equal(t, []float64{1.5, 3}, c.Sdtrace.Times)

	_, err = Overrides([]string{"--Bins"})
	require.Error(t, err)
	_, err = Overrides([]string{"Bins", "5"})
	require.Error(t, err)
	_, err = Overrides([]string{"--", "5"})
	require.Error(t, err)

	over, err = Overrides([]string{"--Bins", "x"})
	require.NoError(t, err)
	_, _, err = Read(fname, over)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		c := Default()
		c.Sdtrace.Dataset = "run.sds"
		c.Sdtrace.Attributes = []string{"radius"}
		return c
	}

	tests := []struct {
		mode  string
		edit  func(v *Vars)
		valid bool
	}{
		{"help", func(v *Vars) { v.Dataset = "" }, true},
		{"example_config", func(v *Vars) {}, true},
		{"convert", func(v *Vars) {}, false},
		{"check", func(v *Vars) { v.Attributes = nil }, true},
		{"check", func(v *Vars) { v.Dataset = "" }, false},
		{"lagrangian", func(v *Vars) {}, true},
		{"lagrangian", func(v *Vars) { v.Attributes = nil }, false},
		{"lagrangian", func(v *Vars) { v.Output = "" }, false},
		{"lagrangian", func(v *Vars) { v.Output = "{time}.nc" }, false},
		{"lagrangian", func(v *Vars) { v.KeyedRows = true }, false},
		{"lagrangian", func(v *Vars) {
			v.KeyedRows, v.Times = true, []float64{1}
		}, true},
		{"lagrangian", func(v *Vars) { v.Rain, v.RainRadius = true, 0 }, false},
		{"trace", func(v *Vars) {}, false},
		{"trace", func(v *Vars) { v.IDs = "1..4" }, true},
		{"trace", func(v *Vars) { v.IDs = "4..1" }, false},
		{"trace", func(v *Vars) { v.MaxID = 10 }, true},
		{"trace", func(v *Vars) { v.MaxID, v.Samples = 10, -1 }, false},
		{"eulerian", func(v *Vars) {}, true},
		{"eulerian", func(v *Vars) { v.Indexer = "" }, false},
		{"eulerian", func(v *Vars) { v.Bins = -2 }, false},
	}

	for i := range tests {
		c := base()
		tests[i].edit(&c.Sdtrace)
		err := c.Validate(tests[i].mode)
		if tests[i].valid && err != nil {
			t.Errorf("%d) Expected mode '%s' to be valid, got error '%s'.",
				i, tests[i].mode, err.Error())
		} else if !tests[i].valid && err == nil {
			t.Errorf("%d) Expected mode '%s' to fail, but got no error.",
				i, tests[i].mode)
		}
	}
}
