package pipeline

// Aggregate computes summary statistics over a sequence of call records.
// Order is irrelevant, the empty sequence is a normal input and yields the
// zero Stats. Records are assumed to have passed ValidateRecord, so the
// band counts always sum to Total.
func Aggregate(records []CallRecord) Stats {
	stats := Stats{Total: len(records)}
	if stats.Total == 0 {
		return stats
	}

	var sum float64
	for _, r := range records {
		if r.Resolved {
			stats.Resolved++
		}
		sum += r.SentimentScore

		switch bandOf(r.SentimentScore) {
		case BandPositive:
			stats.Distribution.Positive++
		case BandNegative:
			stats.Distribution.Negative++
		default:
			stats.Distribution.Neutral++
		}
	}

	stats.Unresolved = stats.Total - stats.Resolved
	stats.AverageSentiment = sum / float64(stats.Total)
	return stats
}
