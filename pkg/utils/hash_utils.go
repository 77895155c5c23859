package utils

// ShortHash abbreviates a transaction hash for log lines.
func ShortHash(hash string) string {
	if len(hash) <= 10 {
		return hash
	}
	return hash[:10] + "..."
}
