// Package report renders the outcome of a grading run for the operator: a
// plain-text summary on the terminal plus optional YAML and Prometheus
// textfile artifacts.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/flarebyte/coachgrade/internal/reconcile"
)

// previewLimit caps how many accessed names the text summary lists.
const previewLimit = 5

const rule = "------------------------------------------------------------"

// Banner prints the run header shown before any record is probed.
func Banner(w io.Writer, total int, baseURL string, full, zero int) {
	fmt.Fprintf(w, "Checking %d students against %s\n", total, baseURL)
	fmt.Fprintf(w, "  Scoring: %d pts if accessed, %d pts if not\n", full, zero)
	fmt.Fprintln(w, rule)
}

// NextCommand is the gradebook import command for the written roster.
func NextCommand(outPath string) string {
	return fmt.Sprintf("python paste-to-gradebook.py --f %q --paste-mode", outPath)
}

// Text prints the end-of-run summary: bucket counts, a preview of accessed
// names, every name not accessed or skipped, and where the output went.
func Text(w io.Writer, s reconcile.Summary, outPath string) {
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "\nRESULTS: %d/%d students accessed the coach\n", len(s.Accessed), s.Total)
	fmt.Fprintf(w, "  Accessed: %d  Not accessed: %d  Skipped: %d\n", len(s.Accessed), len(s.NotAccessed), len(s.Skipped))
	fmt.Fprintf(w, "  Completed (%d): %s\n", len(s.Accessed), preview(s.Accessed, previewLimit))
	if s.NetworkErrors > 0 {
		fmt.Fprintf(w, "  Network errors: %d (scored as not accessed; rerun to re-check)\n", s.NetworkErrors)
	}
	if len(s.NotAccessed) > 0 {
		fmt.Fprintf(w, "\n  NOT done (%d):\n", len(s.NotAccessed))
		for _, n := range s.NotAccessed {
			fmt.Fprintf(w, "    %s\n", n)
		}
	}
	if len(s.Skipped) > 0 {
		fmt.Fprintf(w, "\n  SKIPPED, no Student Num (%d):\n", len(s.Skipped))
		for _, n := range s.Skipped {
			if n == "" {
				n = "(blank row)"
			}
			fmt.Fprintf(w, "    %s\n", n)
		}
	}
	fmt.Fprintf(w, "\nOutput written to: %s\n", outPath)
	fmt.Fprintf(w, "\nNext step:\n  %s\n", NextCommand(outPath))
}

func preview(names []string, limit int) string {
	if len(names) <= limit {
		return strings.Join(names, ", ")
	}
	return strings.Join(names[:limit], ", ") + fmt.Sprintf(" ... +%d more", len(names)-limit)
}
