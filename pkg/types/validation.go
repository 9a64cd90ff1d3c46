package types

// IsValidUsername checks the 1-50 character, alphanumeric plus
// underscore/hyphen rule applied to stored user records.
func IsValidUsername(username string) bool {
	if len(username) == 0 || len(username) > 50 {
		return false
	}

	for _, r := range username {
		if !((r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') ||
			r == '_' || r == '-') {
			return false
		}
	}

	return true
}
