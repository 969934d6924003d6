package baseline

import (
	"encoding/json"
	"fmt"
	"io"
)

// statusLabel maps a status to its report marker and wording.
func statusLabel(st Status) string {
	switch st {
	case StatusApplied:
		return "ok  applied"
	case StatusNeedsChange:
		return "!!  needs change"
	case StatusNotApplied:
		return "--  not applied"
	case StatusSkipped:
		return "    skipped"
	case StatusError:
		return "xx  error"
	default:
		return string(st)
	}
}

// Render writes the human-readable per-bucket report and summary.
func (r *Report) Render(w io.Writer) {
	div := "================================================================================"
	fmt.Fprintln(w, div)
	if r.DryRun {
		fmt.Fprintf(w, "Reconciliation report (dry-run) - account %s\n", r.AccountID)
	} else {
		fmt.Fprintf(w, "Reconciliation report - account %s\n", r.AccountID)
	}
	fmt.Fprintln(w, div)

	for _, o := range r.Outcomes {
		overall := "partial failure"
		if o.Succeeded() {
			overall = "success"
		}
		fmt.Fprintf(w, "%s: %s\n", o.Bucket, overall)
		fmt.Fprintf(w, "  - policy:  %s\n", statusLabel(o.Policy.Status))
		if o.Policy.Error != "" {
			fmt.Fprintf(w, "             %s\n", o.Policy.Error)
		}
		fmt.Fprintf(w, "  - logging: %s\n", statusLabel(o.Logging.Status))
		if o.Logging.Error != "" {
			fmt.Fprintf(w, "             %s\n", o.Logging.Error)
		}
		if o.PolicyDiff != nil {
			renderDiff(w, "policy", deref(o.PolicyDiff.Before), deref(o.PolicyDiff.After))
		}
		if o.LoggingDiff != nil {
			renderDiff(w, "logging", deref(o.LoggingDiff.Before), deref(o.LoggingDiff.After))
		}
	}

	s := r.Summary
	fmt.Fprintln(w, div)
	fmt.Fprintf(w, "Buckets processed: %d (success %d, partial failure %d)\n",
		s.Total, s.Succeeded, s.PartialFailures)
	fmt.Fprintln(w)
	renderDimension(w, "Deny insecure transport policy", s.Policy)
	fmt.Fprintln(w)
	renderDimension(w, "Access logging", s.Logging)
	fmt.Fprintln(w, div)
}

// renderDiff prints the before and after documents of a pending change as
// indented JSON. A nil before means nothing is currently configured.
func renderDiff(w io.Writer, what string, before, after any) {
	fmt.Fprintf(w, "  %s before:\n", what)
	writeIndented(w, before)
	fmt.Fprintf(w, "  %s after:\n", what)
	writeIndented(w, after)
}

// deref flattens a typed nil pointer to a bare nil interface.
func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return p
}

func writeIndented(w io.Writer, v any) {
	if v == nil {
		fmt.Fprintln(w, "      (none)")
		return
	}
	data, err := json.MarshalIndent(v, "      ", "  ")
	if err != nil {
		fmt.Fprintf(w, "      (unrenderable: %v)\n", err)
		return
	}
	fmt.Fprintf(w, "      %s\n", data)
}

func renderDimension(w io.Writer, title string, c StatusCounts) {
	fmt.Fprintf(w, "%s:\n", title)
	if c.Skipped > 0 {
		fmt.Fprintf(w, "  skipped:      %3d\n", c.Skipped)
		return
	}
	fmt.Fprintf(w, "  applied:      %3d\n", c.Applied)
	fmt.Fprintf(w, "  needs change: %3d\n", c.NeedsChange)
	fmt.Fprintf(w, "  not applied:  %3d\n", c.NotApplied)
	if c.Errors > 0 {
		fmt.Fprintf(w, "  errors:       %3d\n", c.Errors)
	}
}

// RenderJSON writes the full report as indented JSON.
func (r *Report) RenderJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
