package enums

import "fmt"

// PackagingTier is the container size chosen from an order's item count.
type PackagingTier string

const (
	PackagingTierSmall  PackagingTier = "small"
	PackagingTierMedium PackagingTier = "medium"
	PackagingTierLarge  PackagingTier = "large"
)

var validPackagingTiers = []PackagingTier{
	PackagingTierSmall,
	PackagingTierMedium,
	PackagingTierLarge,
}

// String implements fmt.Stringer.
func (p PackagingTier) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PackagingTier.
func (p PackagingTier) IsValid() bool {
	for _, candidate := range validPackagingTiers {
		if candidate == p {
			return true
		}
	}
	return false
}

// PackagingTiers returns every tier from smallest to largest.
func PackagingTiers() []PackagingTier {
	out := make([]PackagingTier, len(validPackagingTiers))
	copy(out, validPackagingTiers)
	return out
}

// ParsePackagingTier converts raw input into a PackagingTier.
func ParsePackagingTier(value string) (PackagingTier, error) {
	for _, candidate := range validPackagingTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid packaging tier %q", value)
}
