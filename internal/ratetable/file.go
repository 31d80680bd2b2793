package ratetable

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML rate table:
//
//	commission_rates:
//	  uber_eats: "0.30"
//	packaging:
//	  small: "0.15"
func LoadFile(path string) (Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("read rate table %q: %w", path, err)
	}
	return ParseYAML(raw)
}

// ParseYAML decodes a YAML document into a validated Table. Unknown keys are rejected.
func ParseYAML(raw []byte) (Table, error) {
	var doc struct {
		CommissionRates map[string]string `yaml:"commission_rates"`
		Packaging       map[string]string `yaml:"packaging"`
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return Table{}, fmt.Errorf("decode rate table: %w", err)
	}
	return FromStrings(doc.CommissionRates, doc.Packaging)
}

// MarshalYAML renders t in the LoadFile format.
func MarshalYAML(t Table) ([]byte, error) {
	s := t.Snapshot()
	doc := struct {
		CommissionRates map[string]string `yaml:"commission_rates"`
		Packaging       map[string]string `yaml:"packaging"`
	}{
		CommissionRates: make(map[string]string, len(s.CommissionRates)),
		Packaging:       make(map[string]string, len(s.Packaging)),
	}
	for k, v := range s.CommissionRates {
		doc.CommissionRates[k] = v.StringFixed(4)
	}
	for k, v := range s.Packaging {
		doc.Packaging[k] = v.StringFixed(2)
	}
	return yaml.Marshal(doc)
}
