package rules

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads rule definitions from a YAML file of the form
//
//	rules:
//	  - id: vip-free-shipping
//	    name: Free shipping for VIPs
//	    trigger: order_created
//	    conditions:
//	      customer_type: vip
//	      total: {$gte: 100}
//	    actions:
//	      - type: update_order
//	        parameters: {field: notes, value: free shipping}
func LoadFile(path string) ([]*Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	loaded, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return loaded, nil
}

// Load decodes rule definitions from r. Rules without an explicit
// `enabled` key are enabled.
func Load(r io.Reader) ([]*Rule, error) {
	var doc struct {
		Rules []yaml.Node `yaml:"rules"`
	}

	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	loaded := make([]*Rule, 0, len(doc.Rules))
	for i := range doc.Rules {
		node := &doc.Rules[i]

		var rule Rule
		if err := node.Decode(&rule); err != nil {
			return nil, fmt.Errorf("rule %d (line %d): %w", i, node.Line, err)
		}

		var flags struct {
			Enabled *bool `yaml:"enabled"`
		}
		if err := node.Decode(&flags); err != nil {
			return nil, fmt.Errorf("rule %d (line %d): %w", i, node.Line, err)
		}
		rule.Enabled = flags.Enabled == nil || *flags.Enabled

		loaded = append(loaded, &rule)
	}

	return loaded, nil
}
