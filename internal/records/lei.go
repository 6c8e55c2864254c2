package records

// ValidLEI performs the structural Legal Entity Identifier check: exactly
// 20 alphanumeric characters. No registry lookup is made; checksum and
// GLEIF status verification are out of scope.
func ValidLEI(lei string) bool {
	if len(lei) != 20 {
		return false
	}
	for _, r := range lei {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'Z':
		case r >= 'a' && r <= 'z':
		default:
			return false
		}
	}
	return true
}
