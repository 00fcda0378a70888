package domain

import "math"

// OptionResult is the aggregated outcome for a single option.
type OptionResult struct {
	Count      int64 `json:"count"`
	Percentage int   `json:"percentage"`
}

// CountByOption sums voting power per option. Votes with non-positive
// power are ignored.
func CountByOption(votes []*Vote) map[string]int64 {
	counts := make(map[string]int64)
	for _, v := range votes {
		if v.VotingPower <= 0 {
			continue
		}
		counts[v.Option] += v.VotingPower
	}
	return counts
}

// TallyVotes aggregates votes into per-option results. Every option in
// options gets an entry, including those with no votes. Percentages
// are rounded to whole numbers and are all zero when no power has been
// cast. No winning option is selected.
func TallyVotes(options []string, votes []*Vote) map[string]OptionResult {
	counts := CountByOption(votes)

	var total int64
	for _, opt := range options {
		total += counts[opt]
	}

	results := make(map[string]OptionResult, len(options))
	for _, opt := range options {
		count := counts[opt]
		percentage := 0
		if total > 0 {
			percentage = int(math.Round(float64(count) / float64(total) * 100))
		}
		results[opt] = OptionResult{Count: count, Percentage: percentage}
	}
	return results
}
