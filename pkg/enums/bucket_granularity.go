package enums

import "fmt"

// BucketGranularity selects the time bucket used by period reports.
type BucketGranularity string

const (
	BucketGranularityHour BucketGranularity = "hour"
	BucketGranularityDay  BucketGranularity = "day"
	BucketGranularityWeek BucketGranularity = "week"
)

var validBucketGranularities = []BucketGranularity{
	BucketGranularityHour,
	BucketGranularityDay,
	BucketGranularityWeek,
}

// String implements fmt.Stringer.
func (b BucketGranularity) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BucketGranularity.
func (b BucketGranularity) IsValid() bool {
	for _, candidate := range validBucketGranularities {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBucketGranularity converts raw input into a BucketGranularity.
func ParseBucketGranularity(value string) (BucketGranularity, error) {
	for _, candidate := range validBucketGranularities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid bucket granularity %q", value)
}
