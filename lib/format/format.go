/*package format handles sdtrace's miniature formatting languages for
choosing superdroplets and naming output files, e.g:

   IDs = 0..100 - 63
   Output = "trace_{attribute}.csv"

Sequence formats are a generic way to specify non-contiguous sequences of
natural numbers. They consist of a series of n tokens separated by "+" or "-".
Each token can be either a number or two numbers separated by "..". E.g.:

  100
  0..100
  0..10 + 100
  0..100 - 63 - 10..20

These strings build up sequences of numbers by adding/removing individual
numbers and contiguous sequences. For example, 0 through 10 would be 0..10,
1, 2, 3, 15, 16, 17 could be written as 1..17 - 4..14. This is useful for
skipping broken superdroplets or picking out a handful of identifiers.

All spaces around "-" and "+" symbols are ignored.

File formats are a combination of fixed text and variables. Variables are
written as {name} and are replaced by the value of that variable, e.g. the
name of the attribute being written.
*/
package format

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	g_error "github.com/phil-mansfield/sdtrace/lib/error"
)

const (
	// Any expanded sequences which would have more than BigNumber elements
	// are assumed to be bugs.
	BigNumber = 1 << 20
)

// ExpandSequence expands a sequence format string into a sorted sequence
// of integers.
func ExpandSequence(format string) ([]int, error) {
	// Parse and error-check the format string.
	tok, err := tokeniseSequence(format)
	if err != nil {
		return nil, err
	}
	adds, subs, err := addsSubs(tok)
	if err != nil {
		return nil, err
	}

	total := 0
	for i := range adds {
		total += tokenLen(adds[i])
		if total > BigNumber {
			return nil, fmt.Errorf("This sequence would have more than %d "+
				"elements, which is almost certainly a bug.", BigNumber)
		}
	}

	// Add numbers to the sequence.
	m := map[int]struct{}{}
	for i := range adds {
		for _, n := range parseToken(adds[i]) {
			if _, ok := m[n]; ok {
				return nil, fmt.Errorf("The number %d is added more than "+
					"once.", n)
			}
			m[n] = struct{}{}
		}
	}

	// Remove numbers from the sequence.
	for i := range subs {
		for _, n := range parseToken(subs[i]) {
			if _, ok := m[n]; !ok {
				return nil, fmt.Errorf("The number %d is removed more times "+
					"than it was inserted.", n)
			}
			delete(m, n)
		}
	}

	out := make([]int, 0, len(m))
	for n := range m {
		out = append(out, n)
	}
	sort.Ints(out)

	return out, nil
}

// tokeniseSequence splits a sequence format into numbers, ranges and
// operators.
func tokeniseSequence(format string) ([]string, error) {
	// Make sure all operators are separated by spaces.
	clean := strings.ReplaceAll(format, "+", " + ")
	clean = strings.ReplaceAll(clean, "-", " - ")

	tok := strings.Fields(clean)
	if len(tok) == 0 {
		return nil, fmt.Errorf("The format string is empty.")
	}
	return tok, nil
}

func addsSubs(tok []string) (adds, subs []string, err error) {
	if len(tok) == 0 {
		return nil, nil, fmt.Errorf("Format string is empty")
	}

	// Handle the case where the starting "+" is dropped.
	adds, subs = []string{}, []string{}
	start := 0
	if tok[0] != "+" && tok[0] != "-" {
		if err := isToken(tok[0]); err != nil {
			return nil, nil, fmt.Errorf(
				"Element number %d, '%s', cannot be parsed because %s",
				1, tok[0], err.Error(),
			)
		}
		adds = append(adds, tok[0])
		start = 1
	}

	for i := start; i < len(tok); i += 2 {
		if tok[i] != "-" && tok[i] != "+" {
			return nil, nil, fmt.Errorf(
				"Element number %d, '%s', should be a '-' or '+', but isn't.",
				i+1, tok[i])
		}

		if i+1 >= len(tok) {
			return nil, nil, fmt.Errorf(
				"The format string ends in a trailing '%s'", tok[i],
			)
		}

		if err := isToken(tok[i+1]); err != nil {
			return nil, nil, fmt.Errorf(
				"Element number %d, '%s', cannot be parsed because %s",
				i+2, tok[i+1], err.Error(),
			)
		}

		if tok[i] == "+" {
			adds = append(adds, tok[i+1])
		} else {
			subs = append(subs, tok[i+1])
		}
	}

	return adds, subs, nil
}

// isToken returns a nil error if tok is a valid token for a sequence format
// and an error describing the problem otherwise. The error message assumes
// it is printed after a trailing "because".
func isToken(tok string) error {
	if len(tok) == 0 {
		return fmt.Errorf("the token is empty.")
	}

	bounds := strings.Split(tok, "..")

	switch len(bounds) {
	case 1:
		if _, err := strconv.Atoi(bounds[0]); err != nil {
			return fmt.Errorf("'%s' is not an integer.", bounds[0])
		}
		return nil
	case 2:
		start, err := strconv.Atoi(bounds[0])
		if err != nil {
			return fmt.Errorf("'%s' is not an integer.", bounds[0])
		}
		end, err := strconv.Atoi(bounds[1])
		if err != nil {
			return fmt.Errorf("'%s' is not an integer.", bounds[1])
		}
		if end < start {
			return fmt.Errorf("lower bound %d is larger than upper bound %d.",
				start, end)
		}
		return nil
	}
	return fmt.Errorf("it has more than one '..'.")
}

// tokenLen returns the number of integers a valid token expands to.
func tokenLen(tok string) int {
	bounds := strings.Split(tok, "..")
	if len(bounds) == 1 {
		return 1
	}
	start, _ := strconv.Atoi(bounds[0])
	end, _ := strconv.Atoi(bounds[1])
	return end - start + 1
}

// parseToken parses a single token of a sequence format and returns the
// corresponding array of numbers. It assumes that isToken has already
// accepted tok.
func parseToken(tok string) []int {
	bounds := strings.Split(tok, "..")

	switch len(bounds) {
	case 1:
		n, _ := strconv.Atoi(tok)
		return []int{n}
	case 2:
		start, _ := strconv.Atoi(bounds[0])
		end, _ := strconv.Atoi(bounds[1])
		out := make([]int, 0, end-start+1)
		for n := start; n <= end; n++ {
			out = append(out, n)
		}
		return out
	}

	g_error.Internal("Invalid sequence token, '%s', passed isToken()", tok)
	return nil
}

// ExpandFile replaces every {name} variable in a file format with
// vars[name].
func ExpandFile(format string, vars map[string]string) (string, error) {
	starts, ends, err := startsEnds(format)
	if err != nil {
		return "", err
	}

	sb := &strings.Builder{}
	prev := 0
	for i := range starts {
		sb.WriteString(format[prev:starts[i]])
		name := strings.TrimSpace(format[starts[i]+1 : ends[i]-1])
		val, ok := vars[name]
		if !ok {
			return "", fmt.Errorf("The file format '%s' uses the variable "+
				"'%s', but the only recognized variables are %s.",
				format, name, varNames(vars))
		}
		sb.WriteString(val)
		prev = ends[i]
	}
	sb.WriteString(format[prev:])
	return sb.String(), nil
}

// startsEnds returns the indices of the beginning and end of each format
// variable.
func startsEnds(format string) (starts, ends []int, err error) {
	starts, ends = []int{}, []int{}
	nested := 0

	ending := "Make sure variables in file formats are enclosed in " +
		"matching { ... } pairs."

	for i := range format {
		if format[i] == '{' {
			nested++
			starts = append(starts, i)
		} else if format[i] == '}' {
			nested--
			ends = append(ends, i+1)
		}

		if nested > 1 {
			end := len(starts) - 1
			return nil, nil, fmt.Errorf("The file format '%s' has nested "+
				"'{' characters, making it invalid. These '{'s are at "+
				"indices %d and %d. "+ending,
				format, starts[end-1], starts[end])
		} else if nested < 0 {
			end := len(ends) - 1
			return nil, nil, fmt.Errorf("The file format '%s' has a '}' "+
				"that doesn't come after a '{' character, making it "+
				"invalid. This '}' is at index %d. "+ending,
				format, ends[end]-1)
		}
	}

	if len(ends) != len(starts) {
		end := len(starts) - 1
		return nil, nil, fmt.Errorf("The file format '%s' has a '{' "+
			"without a matching '}', making it invalid. This '{' is at "+
			"index %d. "+ending, format, starts[end])
	}

	return starts, ends, nil
}

func varNames(vars map[string]string) []string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
