// Package report prints the outcome of a pricing run.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	accel "github.com/jwaldner/heston/accel_lib"
	"github.com/jwaldner/heston/internal/config"
)

// RelativeError returns |computed/reference - 1| in percent. A zero
// reference yields +Inf or NaN; callers decide how to show that.
func RelativeError(computed, reference float64) float64 {
	return math.Abs(computed/reference-1) * 100
}

// Print writes the elapsed time and both prices. The difference to a
// reference price is shown only when that reference was given.
func Print(w io.Writer, cfg config.Config, res accel.Result) error {
	prices := res.Outputs.Prices()

	var b strings.Builder
	fmt.Fprintf(&b, "The execution lasts for %.6f s (wall time).\n", res.Elapsed.Seconds())
	writePrice(&b, "call", prices.Call, cfg.Reference.Call, cfg.Reference.HasCall)
	writePrice(&b, "put", prices.Put, cfg.Reference.Put, cfg.Reference.HasPut)

	_, err := io.WriteString(w, b.String())
	return err
}

func writePrice(b *strings.Builder, kind string, price, reference float64, hasReference bool) {
	fmt.Fprintf(b, "the %s price is: %.6g", kind, price)
	if hasReference {
		b.WriteString("\tthe difference with the reference value is ")
		if reference == 0 {
			b.WriteString("undefined (reference is zero)")
		} else {
			fmt.Fprintf(b, "%.6g%%", RelativeError(price, reference))
		}
	}
	b.WriteString("\n")
}
