// Package report serializes fit results to a sectioned key/value text
// layout and parses that layout back into a parameter store.
//
// The layout has four section kinds: a [data] header, one [fit <prefix>]
// block per peak component, a flat [parameters] table, and a [statistics]
// block. Values are written with full float precision so a written report
// re-parses to the same numbers.
package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-peakfit/fit"
	"github.com/cwbudde/algo-peakfit/gof"
	"github.com/cwbudde/algo-peakfit/model"
	"github.com/cwbudde/algo-peakfit/param"
)

// Errors reported by the parser.
var (
	ErrBadLayout = errors.New("report: malformed layout")
	ErrBadValue  = errors.New("report: malformed value")
)

// Write serializes a fit result to w in the sectioned text layout.
func Write(w io.Writer, res *fit.Result) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "[data]")
	fmt.Fprintf(bw, "points = %d\n", len(res.X))
	if len(res.X) > 0 {
		fmt.Fprintf(bw, "xmin = %s\n", formatFloat(res.X[0]))
		fmt.Fprintf(bw, "xmax = %s\n", formatFloat(res.X[len(res.X)-1]))
	}
	fmt.Fprintln(bw)

	for _, c := range res.Components {
		fmt.Fprintf(bw, "[fit %s]\n", c.Prefix)
		fmt.Fprintf(bw, "kind = %s\n", c.Kind)
		for _, kv := range []struct {
			key   string
			value float64
		}{
			{"amplitude", c.Amplitude}, {"center", c.Center}, {"sigma", c.Sigma},
			{"gamma", c.Gamma}, {"fwhm", c.FWHM}, {"height", c.Height},
			{"fraction", c.Fraction}, {"skew", c.Skew}, {"q", c.Q},
		} {
			fmt.Fprintf(bw, "%s = %s\n", kv.key, formatFloat(kv.value))
		}
		fmt.Fprintln(bw)
	}

	fmt.Fprintln(bw, "[parameters]")
	for _, pr := range res.Params {
		fmt.Fprintf(bw, "%s = %s stderr=%s init=%s min=%s max=%s",
			pr.Name, formatFloat(pr.Value), formatFloat(pr.Stderr),
			formatFloat(pr.Init), formatFloat(pr.Min), formatFloat(pr.Max))
		switch pr.Kind {
		case param.Derived:
			fmt.Fprintf(bw, " expr=%q", pr.Expr)
		case param.Fixed:
			fmt.Fprint(bw, " vary=false")
		default:
			fmt.Fprint(bw, " vary=true")
		}
		fmt.Fprintln(bw)
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "[statistics]")
	fmt.Fprintf(bw, "points = %d\n", res.Stats.NPoints)
	fmt.Fprintf(bw, "free = %d\n", res.Stats.NFree)
	fmt.Fprintf(bw, "chi_square = %s\n", formatFloat(res.Stats.ChiSquare))
	fmt.Fprintf(bw, "reduced_chi_square = %s\n", formatFloat(res.Stats.RedChi))
	fmt.Fprintf(bw, "aic = %s\n", formatFloat(res.Stats.AIC))
	fmt.Fprintf(bw, "bic = %s\n", formatFloat(res.Stats.BIC))
	fmt.Fprintf(bw, "status = %s\n", res.Status)
	fmt.Fprintf(bw, "nfev = %d\n", res.NumEval)

	return bw.Flush()
}

// Component is one parsed [fit <prefix>] block.
type Component struct {
	Prefix string
	Kind   model.Kind
	Values map[string]float64
}

// Report is the parsed form of the text layout. Params reproduces the
// free/fixed/derived classification of the original parameter set, with
// fitted values as the new initial values.
type Report struct {
	Points     int
	XMin, XMax float64
	Components []Component
	Params     *param.Set
	Stats      gof.Statistics
	Status     string
	NumEval    int
}

// Parse reads the sectioned text layout back into a Report.
func Parse(r io.Reader) (*Report, error) {
	rep := &Report{
		Params: param.NewSet(),
		XMin:   math.NaN(),
		XMax:   math.NaN(),
	}
	rep.Stats.RedChi = math.NaN()
	rep.Stats.AIC = math.NaN()
	rep.Stats.BIC = math.NaN()

	const (
		secNone = iota
		secData
		secFit
		secParams
		secStats
	)
	section := secNone
	var current *Component

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return nil, fmt.Errorf("%w: line %d: %q", ErrBadLayout, lineNo, line)
			}
			header := strings.TrimSpace(line[1 : len(line)-1])
			switch {
			case header == "data":
				section = secData
			case header == "parameters":
				section = secParams
			case header == "statistics":
				section = secStats
			case strings.HasPrefix(header, "fit "):
				section = secFit
				rep.Components = append(rep.Components, Component{
					Prefix: strings.TrimSpace(strings.TrimPrefix(header, "fit ")),
					Values: make(map[string]float64),
				})
				current = &rep.Components[len(rep.Components)-1]
			default:
				return nil, fmt.Errorf("%w: line %d: unknown section %q", ErrBadLayout, lineNo, header)
			}
			continue
		}

		key, rest, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("%w: line %d: %q", ErrBadLayout, lineNo, line)
		}
		key = strings.TrimSpace(key)
		rest = strings.TrimSpace(rest)

		var err error
		switch section {
		case secData:
			err = rep.parseData(key, rest)
		case secFit:
			err = current.parseField(key, rest)
		case secParams:
			err = rep.parseParameter(key, rest)
		case secStats:
			err = rep.parseStatistic(key, rest)
		default:
			err = fmt.Errorf("%w: key/value before any section", ErrBadLayout)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return rep, nil
}

func (rep *Report) parseData(key, value string) error {
	switch key {
	case "points":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: points %q", ErrBadValue, value)
		}
		rep.Points = n
	case "xmin":
		return parseFloatInto(&rep.XMin, value)
	case "xmax":
		return parseFloatInto(&rep.XMax, value)
	}
	return nil
}

func (c *Component) parseField(key, value string) error {
	if c == nil {
		return fmt.Errorf("%w: fit field outside a fit section", ErrBadLayout)
	}
	if key == "kind" {
		k, err := model.KindFromString(value)
		if err != nil {
			return err
		}
		c.Kind = k
		return nil
	}
	v, err := parseFloat(value)
	if err != nil {
		return err
	}
	c.Values[key] = v
	return nil
}

// parseParameter handles one [parameters] line:
//
//	name = value stderr=... init=... min=... max=... vary=true|false
//	name = value stderr=... init=... min=... max=... expr="..."
func (rep *Report) parseParameter(name, rest string) error {
	// A quoted expression may contain spaces; cut it off first.
	expr := ""
	if i := strings.Index(rest, `expr="`); i >= 0 {
		tail := rest[i+len(`expr="`):]
		j := strings.LastIndex(tail, `"`)
		if j < 0 {
			return fmt.Errorf("%w: unterminated expression for %q", ErrBadValue, name)
		}
		expr = tail[:j]
		rest = strings.TrimSpace(rest[:i])
	}

	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return fmt.Errorf("%w: empty parameter line for %q", ErrBadValue, name)
	}

	value, err := parseFloat(fields[0])
	if err != nil {
		return err
	}

	stderr := math.NaN()
	init := value
	min := math.Inf(-1)
	max := math.Inf(1)
	vary := true
	for _, field := range fields[1:] {
		k, v, ok := strings.Cut(field, "=")
		if !ok {
			return fmt.Errorf("%w: field %q for %q", ErrBadValue, field, name)
		}
		switch k {
		case "stderr":
			err = parseFloatInto(&stderr, v)
		case "init":
			err = parseFloatInto(&init, v)
		case "min":
			err = parseFloatInto(&min, v)
		case "max":
			err = parseFloatInto(&max, v)
		case "vary":
			vary = v == "true"
		case "percent":
			// informational, recomputable
		default:
			err = fmt.Errorf("%w: unknown field %q for %q", ErrBadValue, k, name)
		}
		if err != nil {
			return err
		}
	}

	opts := []param.Option{param.WithValue(value), param.WithBounds(min, max)}
	switch {
	case expr != "":
		opts = append(opts, param.WithExpr(expr))
	case !vary:
		opts = append(opts, param.AsFixed())
	}
	if err := rep.Params.Add(name, opts...); err != nil {
		return err
	}
	if p, ok := rep.Params.Get(name); ok {
		p.Stderr = stderr
		p.Init = init
	}
	return nil
}

func (rep *Report) parseStatistic(key, value string) error {
	switch key {
	case "points":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: points %q", ErrBadValue, value)
		}
		rep.Stats.NPoints = n
	case "free":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: free %q", ErrBadValue, value)
		}
		rep.Stats.NFree = n
	case "chi_square":
		return parseFloatInto(&rep.Stats.ChiSquare, value)
	case "reduced_chi_square":
		return parseFloatInto(&rep.Stats.RedChi, value)
	case "aic":
		return parseFloatInto(&rep.Stats.AIC, value)
	case "bic":
		return parseFloatInto(&rep.Stats.BIC, value)
	case "status":
		rep.Status = value
	case "nfev":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: nfev %q", ErrBadValue, value)
		}
		rep.NumEval = n
	}
	return nil
}

func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	default:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
}

func parseFloat(s string) (float64, error) {
	switch s {
	case "nan":
		return math.NaN(), nil
	case "inf":
		return math.Inf(1), nil
	case "-inf":
		return math.Inf(-1), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadValue, s)
	}
	return v, nil
}

func parseFloatInto(dst *float64, s string) error {
	v, err := parseFloat(s)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
