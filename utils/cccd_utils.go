package utils

// Citizen identity numbers (CCCD/CMND) arrive in many shapes: with spaces,
// dashes, dots pasted from scans. Everything that reads or compares an
// identity number goes through NormalizeCCCD first.

// NormalizeCCCD strips every non-digit character from an identity number.
func NormalizeCCCD(raw string) string {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			out = append(out, raw[i])
		}
	}
	return string(out)
}

// IsValidCCCD reports whether a raw identity number normalizes to a valid
// length: 9 digits (old CMND) up to 12 digits (CCCD).
func IsValidCCCD(raw string) bool {
	n := len(NormalizeCCCD(raw))
	return n >= 9 && n <= 12
}
