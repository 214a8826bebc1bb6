package main

import (
	"fmt"
	"io"

	"github.com/ybakhan/flakyping/internal/ping"
	"github.com/ybakhan/flakyping/internal/stats"
)

// writeSummary prints the cache size and the response time statistics
// collected so far.
func writeSummary(w io.Writer, cache *ping.Cache) {
	fmt.Fprintf(w, "Requests cache size - %d\n", cache.Len())
	fmt.Fprintln(w, "View the collected statistics:")

	summary, err := stats.Summarize(cache.Samples())
	if err != nil {
		fmt.Fprintf(w, "No statistics collected - %v\n", err)
		return
	}

	fmt.Fprintf(w, "Average - %g\n", summary.Average)
	fmt.Fprintf(w, "Median - %g\n", summary.Median)
}
