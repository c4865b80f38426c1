package optimizer

import (
	"fmt"
	"strings"
)

// Text renders the result the way operators read it at the bench.
func (r *Result) Text() string {
	var b strings.Builder
	b.WriteString("AUTOMATED OPTIMIZATION RESULTS\n\n")
	fmt.Fprintf(&b, "Tested %d of %d parameter combinations\n", r.Tested, r.GridSize)
	fmt.Fprintf(&b, "Target R²: >=%g, Target CV: <=%g%%\n\n", r.TargetRSquared, r.TargetCV)

	if r.Tested == 0 {
		b.WriteString("No feasible parameter combinations; every grid point failed simulation.\n")
		b.WriteString("Recommendation: expand parameter ranges")
		return b.String()
	}

	fmt.Fprintf(&b, "TOP %d PARAMETER COMBINATIONS:\n", len(r.Top))
	for i, c := range r.Top {
		status := "below target"
		if c.Meets(r.TargetRSquared, r.TargetCV) {
			status = "meets target"
		}
		fmt.Fprintf(&b, "%d. [%s] Asp:%g, Disp:%g, Mix:%dx -> R²:%.3f, CV:%.1f%%\n",
			i+1, status, c.AspirationSpeed, c.DispenseSpeed, c.MixRepetitions, c.RSquared, c.CV)
	}

	if r.TargetMet {
		b.WriteString("\nOPTIMAL PARAMETERS FOUND:\n")
		fmt.Fprintf(&b, "Aspiration: %g µL/s\n", r.Optimal.AspirationSpeed)
		fmt.Fprintf(&b, "Dispense: %g µL/s\n", r.Optimal.DispenseSpeed)
		fmt.Fprintf(&b, "Mix Repetitions: %d\n", r.Optimal.MixRepetitions)
		fmt.Fprintf(&b, "Performance: R²=%.3f, CV=%.1f%%", r.Optimal.RSquared, r.Optimal.CV)
		return b.String()
	}

	fmt.Fprintf(&b, "\nNo parameters met targets. Best result: R²=%.3f, CV=%.1f%%\n", r.Optimal.RSquared, r.Optimal.CV)
	b.WriteString("Recommendation: expand parameter ranges or adjust targets")
	return b.String()
}
