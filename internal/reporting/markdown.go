package reporting

import (
	"fmt"
	"strings"
	"time"

	"econ-sim-lab/internal/domain"
)

// RenderMarkdown renders the sweep digest as Markdown.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder
	totals := ComputeTotals(r.Rows)

	sb.WriteString("# Sweep Report\n\n")
	if r.Record != nil {
		sb.WriteString(fmt.Sprintf("Sweep: `%s`\n\n", r.Record.SweepID))
		sb.WriteString(fmt.Sprintf("Generated: %s\n\n", time.UnixMilli(r.Record.CreatedAt).UTC().Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("Seed: %d | Runs per point: %d | Smoke test: %t\n\n",
			r.Record.Seed, r.Record.RunsPerPoint, r.Record.SmokeTest))
	}

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Parameter combinations | %d |\n", totals.GridPoints))
	sb.WriteString(fmt.Sprintf("| Simulation runs | %d |\n", totals.Runs))
	sb.WriteString(fmt.Sprintf("| Skipped runs | %d |\n", len(r.Failures)))
	sb.WriteString(fmt.Sprintf("| Mean honest share of revenue | %.3f |\n", totals.MeanHonestShare))
	sb.WriteString(fmt.Sprintf("| Mean expected loss for honest | %.3f |\n", totals.MeanExpectedLoss))
	sb.WriteString(fmt.Sprintf("| Mean liveness score | %.3f |\n", totals.MeanLiveness))
	sb.WriteString(fmt.Sprintf("| Successful attacks | %d |\n", totals.SuccessfulAttacks))
	sb.WriteString(fmt.Sprintf("| Failed attacks | %d |\n", totals.FailedAttacks))
	sb.WriteString(fmt.Sprintf("| Attack success rate | %.3f |\n", totals.AttackSuccessRate))
	sb.WriteString("\n")

	sb.WriteString("## Grid Points\n\n")
	if len(r.Summary) > 0 {
		sb.WriteString("| Stake | Decay | Collusion | Sybil | Runs | Honest Share | Expected Loss | Liveness | Detection | Success Rate |\n")
		sb.WriteString("|-------|-------|-----------|-------|------|--------------|---------------|----------|-----------|--------------|\n")
		for _, s := range r.Summary {
			sb.WriteString(fmt.Sprintf("| %g | %g | %d | %g | %d | %.4f ± %.4f | %.4f ± %.4f | %.4f | %.4f | %.4f |\n",
				s.Point.StakeLevel, s.Point.ReputationDecay, s.Point.CollusionSize, s.Point.SybilCost, s.NumRuns,
				s.Stats[domain.MetricHonestShare].Mean, s.Stats[domain.MetricHonestShare].Std,
				s.Stats[domain.MetricExpectedLoss].Mean, s.Stats[domain.MetricExpectedLoss].Std,
				s.Stats[domain.MetricLiveness].Mean,
				s.Stats[domain.MetricCollusionDetection].Mean,
				s.AttackSuccessRate))
		}
	} else {
		sb.WriteString("No summary rows available.\n")
	}
	sb.WriteString("\n")

	sb.WriteString("## Parameter Sensitivity\n\n")
	if len(r.Sensitivity) > 0 {
		sb.WriteString("| Parameter | Metric | Slope | Value Range | Metric Range |\n")
		sb.WriteString("|-----------|--------|-------|-------------|--------------|\n")
		for _, s := range r.Sensitivity {
			sb.WriteString(fmt.Sprintf("| %s | %s | %.6f | %g .. %g | %.6f |\n",
				s.Parameter, s.Metric, s.Sensitivity, s.MinValue, s.MaxValue, s.MetricRange))
		}
	} else {
		sb.WriteString("No axis has more than one value.\n")
	}
	sb.WriteString("\n")

	if len(r.Failures) > 0 {
		sb.WriteString("## Skipped Runs\n\n")
		for _, f := range r.Failures {
			sb.WriteString(fmt.Sprintf("- %s\n", f))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
