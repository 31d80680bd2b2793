package enums

import "fmt"

// ProjectionModel selects the forecasting strategy for trend projection.
type ProjectionModel string

const (
	ProjectionModelTrend    ProjectionModel = "trend"
	ProjectionModelSeasonal ProjectionModel = "seasonal"
	ProjectionModelBlended  ProjectionModel = "blended"
)

var validProjectionModels = []ProjectionModel{
	ProjectionModelTrend,
	ProjectionModelSeasonal,
	ProjectionModelBlended,
}

// String implements fmt.Stringer.
func (p ProjectionModel) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProjectionModel.
func (p ProjectionModel) IsValid() bool {
	for _, candidate := range validProjectionModels {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProjectionModel converts raw input into a ProjectionModel.
func ParseProjectionModel(value string) (ProjectionModel, error) {
	for _, candidate := range validProjectionModels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid projection model %q", value)
}
