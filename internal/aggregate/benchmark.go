package aggregate

import "github.com/newthinker/stocksim/internal/simulator"

// BuildBenchmark compares an investment against a benchmark held over the
// same dates. Returns are compared exactly, without tolerance.
func BuildBenchmark(investment, benchmark simulator.InvestmentResult) BenchmarkResult {
	delta := investment.PercentReturn - benchmark.PercentReturn

	verdict := VerdictTied
	switch {
	case delta > 0:
		verdict = VerdictBeat
	case delta < 0:
		verdict = VerdictUnderperformed
	}

	return BenchmarkResult{
		Investment: investment,
		Benchmark:  benchmark,
		Delta:      delta,
		Verdict:    verdict,
	}
}
