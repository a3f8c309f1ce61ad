/*package config reads sdtrace's configuration files. Config files are
INI-style files with a single [sdtrace] section (see ExampleConfig), and
any variable can be overridden from the command line with --Var value.*/
package config

import (
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/gcfg.v1"
	"gopkg.in/warnings.v0"

	"github.com/phil-mansfield/sdtrace/lib/format"
)

// Vars holds the variables of the [sdtrace] section.
type Vars struct {
	// Dataset is the .sds file to analyse and Consts an optional YAML file
	// of physical constants.
	Dataset string
	Consts  string

	Attributes []string
	Times      []float64

	IDs          string
	Samples      int
	MinID, MaxID int64
	Seed         int64

	EnforceUniqueness bool
	KeyedRows         bool

	Indexer string
	Bins    int

	Rain       bool
	RainRadius float64

	Output  string
	Threads int
}

// Config is the contents of a config file.
type Config struct {
	Sdtrace Vars
}

// Modes lists every mode sdtrace can be run in.
var Modes = []string{"help", "example_config", "check", "lagrangian",
	"trace", "eulerian"}

// Default returns a Config holding the default value of every variable.
func Default() *Config {
	return &Config{Vars{
		Indexer:    "sdgbxindex",
		RainRadius: 40,
		Output:     "sdtrace_{mode}_{attribute}",
	}}
}

// Read reads a config file and then applies command line overrides on top
// of it. Unknown variables are not fatal: they are returned as warnings.
func Read(fname string, overrides string) (*Config, []error, error) {
	c := Default()
	warns := []error{}

	err := gcfg.ReadFileInto(c, fname)
	warns, err = split(warns, err)
	if err != nil {
		return nil, warns, fmt.Errorf("Could not parse the config file "+
			"%s: %w", fname, err)
	}

	if overrides != "" {
		err = gcfg.ReadStringInto(c, overrides)
		warns, err = split(warns, err)
		if err != nil {
			return nil, warns, fmt.Errorf("Could not parse the command "+
				"line arguments: %w", err)
		}
	}
	return c, warns, nil
}

// split separates non-fatal warnings from a gcfg error.
func split(warns []error, err error) ([]error, error) {
	if err == nil {
		return warns, nil
	}
	if l, ok := err.(warnings.List); ok {
		warns = append(warns, l.Warnings...)
	}
	return warns, gcfg.FatalOnly(err)
}

// Overrides converts command line arguments of the form
// --Var1 value1 --Var2 value2 into an [sdtrace] section which can be read
// on top of a config file. Values of multi-valued variables are separated
// by commas and replace the values in the file.
func Overrides(args []string) (string, error) {
	if len(args)%2 != 0 {
		return "", fmt.Errorf("Command line arguments must come in "+
			"--Var value pairs, but %d arguments were given.", len(args))
	}

	multi := multiValued()
	sb := &strings.Builder{}
	sb.WriteString("[sdtrace]\n")
	for i := 0; i < len(args); i += 2 {
		name, val := args[i], args[i+1]
		if !strings.HasPrefix(name, "--") || len(name) == 2 {
			return "", fmt.Errorf("Argument %d, '%s', should have the "+
				"form --Var.", i+1, name)
		}
		name = name[2:]

		if !multi[strings.ToLower(name)] {
			fmt.Fprintf(sb, "%s = %s\n", name, quote(val))
			continue
		}
		// A bare name with no "=" resets a multi-valued variable.
		fmt.Fprintf(sb, "%s\n", name)
		for _, v := range strings.Split(val, ",") {
			if v = strings.TrimSpace(v); v != "" {
				fmt.Fprintf(sb, "%s = %s\n", name, quote(v))
			}
		}
	}
	return sb.String(), nil
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// multiValued returns the lower-case names of every slice variable.
func multiValued() map[string]bool {
	out := map[string]bool{}
	t := reflect.TypeOf(Vars{})
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Type.Kind() == reflect.Slice {
			out[strings.ToLower(t.Field(i).Name)] = true
		}
	}
	return out
}

// Validate checks that the variables needed by the given mode are set.
func (c *Config) Validate(mode string) error {
	v := &c.Sdtrace
	switch mode {
	case "help", "example_config":
		return nil
	case "check", "lagrangian", "trace", "eulerian":
	default:
		return fmt.Errorf("You attempted to run sdtrace in the mode '%s', "+
			"but the only valid modes are %s.", mode,
			strings.Join(Modes, ", "))
	}

	if v.Dataset == "" {
		return fmt.Errorf("The Dataset variable must be set.")
	}
	if v.Rain && v.RainRadius <= 0 {
		return fmt.Errorf("RainRadius is %g, but must be positive.",
			v.RainRadius)
	}

	switch mode {
	case "lagrangian", "trace", "eulerian":
		if len(v.Attributes) == 0 {
			return fmt.Errorf("The '%s' mode needs at least one Attribute.",
				mode)
		}
		if v.Output == "" {
			return fmt.Errorf("The '%s' mode needs an Output file.", mode)
		}
		if _, err := format.ExpandFile(v.Output, map[string]string{
			"mode": mode, "attribute": "",
		}); err != nil {
			return err
		}
	}

	switch mode {
	case "trace":
		if v.IDs != "" {
			if _, err := format.ExpandSequence(v.IDs); err != nil {
				return fmt.Errorf("The IDs variable, '%s', is not valid. %s",
					v.IDs, err.Error())
			}
		} else if v.MaxID <= v.MinID {
			return fmt.Errorf("Either IDs must be set or MaxID (%d) must be "+
				"larger than MinID (%d).", v.MaxID, v.MinID)
		}
		if v.Samples < 0 {
			return fmt.Errorf("Samples is %d, but cannot be negative.",
				v.Samples)
		}
	case "lagrangian":
		if v.KeyedRows && len(v.Times) == 0 {
			return fmt.Errorf("KeyedRows is set, so Times must list the " +
				"output times to keep.")
		}
	case "eulerian":
		if v.Indexer == "" {
			return fmt.Errorf("The 'eulerian' mode needs an Indexer.")
		}
		if v.Bins < 0 {
			return fmt.Errorf("Bins is %d, but cannot be negative.", v.Bins)
		}
	}
	return nil
}
