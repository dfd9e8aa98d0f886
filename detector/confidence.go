package detector

// Confidence is the ordinal certainty tier of a detection.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"   // definitive markers (imports, config files)
	ConfidenceMedium Confidence = "medium" // strong indicators (patterns, naming)
	ConfidenceLow    Confidence = "low"    // weak indicators (generic patterns)
	ConfidenceNone   Confidence = "none"
)

// Tier thresholds on the 0-100 evidence score.
const (
	thresholdHigh   = 75
	thresholdMedium = 40
	thresholdLow    = 10
)

// ScoreConfidence converts match counts into a 0-100 evidence score and its
// tier. The weighting encodes that explicit declarations are stronger
// evidence than incidental naming: config files > imports > code patterns >
// file patterns. Monotonic: more matches never lower the score.
func ScoreConfidence(fileMatches, codeMatches, importMatches, configMatches int) (float64, Confidence) {
	score := 0.0

	if configMatches > 0 {
		score += 40
	}
	if importMatches > 0 {
		score += 35
	}
	if codeMatches > 0 {
		score += min(20, float64(codeMatches)*5)
	}
	if fileMatches > 0 {
		score += min(5, float64(fileMatches)*1)
	}

	score = min(100, score)
	return score, TierFor(score)
}

// TierFor maps an evidence score to its confidence tier.
func TierFor(score float64) Confidence {
	switch {
	case score >= thresholdHigh:
		return ConfidenceHigh
	case score >= thresholdMedium:
		return ConfidenceMedium
	case score >= thresholdLow:
		return ConfidenceLow
	default:
		return ConfidenceNone
	}
}
