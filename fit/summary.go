package fit

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"
)

// summarize renders a human-readable table of fitted parameters together
// with the achieved error and the fit duration.
func summarize(label string, rmse float64, elapsed time.Duration, names []string, cols ...[]float64) string {
	n := 0
	if len(cols) > 0 {
		n = len(cols[0])
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Fit of the %s with %d terms (rmse %.3g, took %s)\n",
		label, n, rmse, elapsed.Round(time.Microsecond))

	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(w, "#")
	for _, name := range names {
		fmt.Fprintf(w, "\t%s", name)
	}
	fmt.Fprintln(w)
	for i := 0; i < n; i++ {
		fmt.Fprintf(w, "%d", i+1)
		for _, col := range cols {
			fmt.Fprintf(w, "\t% .6e", col[i])
		}
		fmt.Fprintln(w)
	}
	w.Flush()
	return sb.String()
}
