package cmd

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/gostdlib/maybesync/prim/maybe/check"
	"github.com/jszwec/csvutil"
	"gopkg.in/yaml.v3"
)

// writeFunc writes reports to w in one output format.
type writeFunc func(w io.Writer, reports []check.Report) error

var writers = map[string]writeFunc{
	"text": writeText,
	"json": writeJSON,
	"csv":  writeCSV,
	"yaml": writeYAML,
}

func formats() []string {
	f := make([]string, 0, len(writers))
	for k := range writers {
		f = append(f, k)
	}
	slices.Sort(f)
	return f
}

func writeText(w io.Writer, reports []check.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CHECK\tMODE\tWORKERS\tITERATIONS\tRESULT\tVIOLATIONS\tELAPSED\tDETAIL")
	for _, r := range reports {
		result := "PASS"
		if !r.Passed {
			result = "FAIL"
		}
		detail := r.Detail
		if r.Fingerprint != "" && detail == "" {
			detail = "fingerprint " + r.Fingerprint
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%d\t%s\t%s\n", r.Check, r.Mode, r.Workers, r.Iterations, result, r.Violations, r.Elapsed, detail)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, reports []check.Report) error {
	b, err := json.MarshalIndent(reports, "", "\t")
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

func writeCSV(w io.Writer, reports []check.Report) error {
	b, err := csvutil.Marshal(reports)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func writeYAML(w io.Writer, reports []check.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(reports); err != nil {
		return err
	}
	return enc.Close()
}
