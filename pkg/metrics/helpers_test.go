package metrics

import (
	"fmt"

	dto "github.com/prometheus/client_model/go"
)

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	metric, err := findMetric(mfs, name, label, value)
	if err != nil {
		return 0, err
	}
	return metric.GetCounter().GetValue(), nil
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	metric, err := findMetric(mfs, name, label, value)
	if err != nil {
		return 0, err
	}
	return metric.GetHistogram().GetSampleSum(), nil
}

func findMetric(mfs []*dto.MetricFamily, name, label, value string) (*dto.Metric, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if pair.GetName() == label && pair.GetValue() == value {
					return metric, nil
				}
			}
		}
		return nil, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
	}
	return nil, fmt.Errorf("metric %q not found", name)
}
