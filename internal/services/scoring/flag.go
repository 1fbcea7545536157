package scoring

// Flagging thresholds. Once a user is flagged, a lower bar keeps them under
// scrutiny so that one moderate-risk claim cannot silently clear them.
const (
	autoFlagThreshold     = 85
	standardFlagThreshold = 75
	flaggedUserThreshold  = 60
)

// ShouldFlag decides whether a user should be marked for manual review given
// a fresh fraud score and their prior flag state.
func ShouldFlag(score int, alreadyFlagged bool) bool {
	if score >= autoFlagThreshold {
		return true
	}
	if alreadyFlagged {
		return score >= flaggedUserThreshold
	}
	return score >= standardFlagThreshold
}
