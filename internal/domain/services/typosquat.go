package services

// Brands that phishing campaigns impersonate most often
var protectedBrands = []string{
	"google",
	"facebook",
	"amazon",
	"apple",
	"microsoft",
	"paypal",
	"netflix",
	"instagram",
	"linkedin",
}

// Digits that pass for letters at a glance
var homoglyphs = map[rune]rune{
	'0': 'o',
	'1': 'i',
}

// matchTyposquat reports the brand a host label is one edit away from.
// An exact brand match is not a squat. Recognized edits: one deleted
// character, one inserted character, one adjacent transposition, and
// homoglyph substitution.
func matchTyposquat(label string) (string, bool) {
	for _, brand := range protectedBrands {
		if label == brand {
			return "", false
		}
		if isOneDeletion(label, brand) ||
			isOneInsertion(label, brand) ||
			isTransposition(label, brand) ||
			isHomoglyph(label, brand) {
			return brand, true
		}
	}
	return "", false
}

// isOneDeletion reports whether label is brand with one character removed
func isOneDeletion(label, brand string) bool {
	return len(label) == len(brand)-1 && isSubsequenceOffByOne(label, brand)
}

// isOneInsertion reports whether label is brand with one character added
func isOneInsertion(label, brand string) bool {
	return len(label) == len(brand)+1 && isSubsequenceOffByOne(brand, label)
}

// isSubsequenceOffByOne reports whether short equals long with exactly one
// character of long skipped. len(short) must be len(long)-1.
func isSubsequenceOffByOne(short, long string) bool {
	skipped := false
	i, j := 0, 0
	for i < len(short) && j < len(long) {
		if short[i] == long[j] {
			i++
			j++
			continue
		}
		if skipped {
			return false
		}
		skipped = true
		j++
	}
	return true
}

// isTransposition reports whether label is brand with one adjacent pair swapped
func isTransposition(label, brand string) bool {
	if len(label) != len(brand) || label == brand {
		return false
	}
	for i := 0; i < len(brand)-1; i++ {
		if brand[i] == brand[i+1] {
			continue
		}
		swapped := brand[:i] + string(brand[i+1]) + string(brand[i]) + brand[i+2:]
		if label == swapped {
			return true
		}
	}
	return false
}

// isHomoglyph reports whether label equals brand after mapping look-alike
// digits back to letters
func isHomoglyph(label, brand string) bool {
	if len(label) != len(brand) || label == brand {
		return false
	}
	normalized := make([]rune, 0, len(label))
	substituted := false
	for _, r := range label {
		if mapped, ok := homoglyphs[r]; ok {
			r = mapped
			substituted = true
		}
		normalized = append(normalized, r)
	}
	return substituted && string(normalized) == brand
}
