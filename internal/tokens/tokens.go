// Package tokens defines the injected token counter contract and the
// line-batch counting convention shared by every budget computation.
package tokens

// Counter reports the model token count of a string. The engine never
// estimates tokens itself; callers inject whichever counter matches the
// target model.
type Counter func(s string) int

// Estimate is a model-free Counter: roughly four characters per token,
// rounded up. Useful as a default and in tests.
func Estimate(s string) int {
	if len(s) == 0 {
		return 0
	}
	return (len(s) + 3) / 4
}

// CountLines returns the token cost of a batch of lines. Each line costs
// count(line)+1, the +1 covering the implicit line separator. Every budget
// comparison downstream depends on this exact convention.
func CountLines(lines []string, count Counter) int {
	total := 0
	for _, line := range lines {
		total += count(line) + 1
	}
	return total
}
