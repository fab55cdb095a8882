package core

import (
	"fmt"
	"io"
	"strings"

	"github.com/ryanuber/columnize"
)

// PrintReport writes a summary table followed by one row per failure.
func PrintReport(w io.Writer, r *Report) {
	moved := "Moved"
	if r.DryRun {
		moved = "Would move"
	}

	rows := []string{
		"Status|Files",
		fmt.Sprintf("%s|%d", moved, r.Summary.Moved),
		fmt.Sprintf("Skipped|%d", r.Summary.Skipped),
		fmt.Sprintf("Failed|%d", r.Summary.Failed),
	}
	fmt.Fprintln(w, columnize.SimpleFormat(rows))

	failures := r.Failures()
	if len(failures) == 0 {
		return
	}

	rows = []string{"Failed File|Error"}
	for _, o := range failures {
		rows = append(rows, fmt.Sprintf("%s|%s", sanitizeCell(o.Source), sanitizeCell(o.Err.Error())))
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, columnize.SimpleFormat(rows))
}

// PrintOutcomes writes one row per outcome, used when inspecting files.
func PrintOutcomes(w io.Writer, outcomes []Outcome) {
	rows := []string{"File|Kind|Date|Source|Destination"}
	for _, o := range outcomes {
		date, dest := "-", "-"
		if o.DateSource != SourceNone {
			date = o.Date.String()
		}
		if o.RelPath != "" {
			dest = o.RelPath
		}
		switch {
		case o.Err != nil:
			dest = sanitizeCell(o.Err.Error())
		case o.Reason != "":
			dest = o.Reason
		}
		source := string(o.DateSource)
		if source == "" {
			source = "-"
		}
		rows = append(rows, fmt.Sprintf("%s|%s|%s|%s|%s", sanitizeCell(o.Source), o.Kind, date, source, dest))
	}
	fmt.Fprintln(w, columnize.SimpleFormat(rows))
}

// columnize splits on "|" so it can't appear inside a cell.
func sanitizeCell(s string) string {
	return strings.ReplaceAll(s, "|", "/")
}
