/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package report renders check results in a human-readable form
// and computes the process exit code.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/acronis/go-oidcprecheck/checker"
)

const headerRule = "======================================================================"

// ExitCodeOK and ExitCodeFailure are the process exit codes computed by the Reporter.
const (
	ExitCodeOK      = 0
	ExitCodeFailure = 1
)

// Reporter writes a formatted validation report to Out.
type Reporter struct {
	Out io.Writer
}

// NewReporter returns a Reporter writing to out.
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{Out: out}
}

// Write renders one block per check result, a summary line and follow-up guidance.
// It returns ExitCodeOK if every check that ran passed and ExitCodeFailure otherwise.
func (r *Reporter) Write(results []checker.Result) int {
	fmt.Fprintf(r.Out, "\n%s\n", headerRule)
	fmt.Fprintln(r.Out, "OpenID Connect Conformance Validation Results")
	fmt.Fprintf(r.Out, "%s\n\n", headerRule)

	passedCount := 0
	for _, result := range results {
		status := "FAIL"
		if result.Passed {
			status = "PASS"
			passedCount++
		}
		fmt.Fprintf(r.Out, "%s | %s\n", status, result.Name)
		fmt.Fprintf(r.Out, "       %s\n", result.Message)

		// Details of failed checks are kept structured for programmatic use
		// but not rendered, the failure message already names the cause.
		if result.Passed {
			for _, field := range result.Details {
				r.writeDetailField(field)
			}
		}
		fmt.Fprintln(r.Out)
	}

	fmt.Fprintln(r.Out, headerRule)
	fmt.Fprintf(r.Out, "Results: %d/%d tests passed\n", passedCount, len(results))
	fmt.Fprintf(r.Out, "%s\n\n", headerRule)

	if passedCount != len(results) {
		fmt.Fprintln(r.Out, "Some tests failed. Please fix issues before conformance testing.")
		return ExitCodeFailure
	}

	fmt.Fprintln(r.Out, "All tests passed! Ready for OpenID Connect Conformance Suite.")
	fmt.Fprintln(r.Out)
	fmt.Fprintln(r.Out, "Next steps:")
	fmt.Fprintln(r.Out, "  1. Go to https://www.certification.openid.net/")
	fmt.Fprintln(r.Out, "  2. Create test plan: oidcc-basic-certification-test-plan")
	fmt.Fprintln(r.Out, "  3. Use your public provider URL for server discovery")
	return ExitCodeOK
}

func (r *Reporter) writeDetailField(field checker.DetailField) {
	if mapping, ok := field.Value.(checker.DetailMapping); ok {
		fmt.Fprintf(r.Out, "       %s:\n", field.Key)
		for _, entry := range mapping {
			fmt.Fprintf(r.Out, "         - %s: %s\n", entry.Key, renderValue(entry.Value))
		}
		return
	}
	fmt.Fprintf(r.Out, "       %s: %s\n", field.Key, renderValue(field.Value))
}

// renderValue renders a detail value on a single line: scalars directly,
// sequences comma-joined, mappings (below the first nesting level) inline.
func renderValue(value checker.DetailValue) string {
	switch v := value.(type) {
	case checker.DetailString:
		return string(v)
	case checker.DetailInt:
		return strconv.Itoa(int(v))
	case checker.DetailNumber:
		return strconv.FormatFloat(float64(v), 'g', -1, 64)
	case checker.DetailBool:
		return strconv.FormatBool(bool(v))
	case checker.DetailNull:
		return "null"
	case checker.DetailSeq:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, renderValue(item))
		}
		return strings.Join(parts, ", ")
	case checker.DetailMapping:
		parts := make([]string, 0, len(v))
		for _, entry := range v {
			parts = append(parts, entry.Key+": "+renderValue(entry.Value))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("%v", v)
	}
}
