package main

import (
	"fmt"
	"io"

	"gramlint/internal/driver"
)

// printTimings writes the per-stage durations of one check result. Cached
// results carry no timings.
func printTimings(out io.Writer, path string, res *driver.Result) {
	if out == nil || res == nil {
		return
	}
	if res.Cached {
		fmt.Fprintf(out, "%s: cached\n", path)
		return
	}
	if res.Timings == nil {
		return
	}
	fmt.Fprintf(out, "%s: %.1f ms\n", path, res.Timings.TotalMS)
	for _, ph := range res.Timings.Phases {
		if ph.Note != "" {
			fmt.Fprintf(out, "  %-14s %8.2f ms  %s\n", ph.Name, ph.DurationMS, ph.Note)
			continue
		}
		fmt.Fprintf(out, "  %-14s %8.2f ms\n", ph.Name, ph.DurationMS)
	}
}
