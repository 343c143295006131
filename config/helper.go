package config

import (
	"fmt"
	"log"
	"os"
	"storefront-backend/internal/pricing"
	"storefront-backend/internal/refund"

	"gopkg.in/yaml.v3"
)

func getInt32Env(key string, fallback int32) int32 {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := toInt32(value); err == nil {
			return i
		}
		log.Printf("Invalid int32 for %s, using fallback", key)
	}
	return fallback
}

func toInt32(s string) (int32, error) {
	var i int32
	_, err := fmt.Sscanf(s, "%d", &i)
	return i, err
}

// policyFile mirrors the YAML layout:
//
//	sizes:
//	  additive: {XS: 30, S: 50}
//	  multiplicative: {S: 1.0, M: 1.05}
//	refund:
//	  base_percent: 75
//	  tiers:
//	    - {name: within_24_hours, unit: hours, max: 24, percent: 90}
type policyFile struct {
	Sizes struct {
		Additive       map[string]float64 `yaml:"additive"`
		Multiplicative map[string]float64 `yaml:"multiplicative"`
	} `yaml:"sizes"`
	Refund yaml.Node `yaml:"refund"`
}

// LoadPolicyFile overlays the YAML file at path onto sizes and policy. A size
// table present in the file replaces the current one; refund keys override
// individually.
func LoadPolicyFile(path string, sizes *pricing.SizeTables, policy *refund.PolicyConfig) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read policy file: %w", err)
	}

	var pf policyFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return fmt.Errorf("parse policy file %s: %w", path, err)
	}

	if pf.Sizes.Additive != nil {
		sizes.Additive = pf.Sizes.Additive
	}
	if pf.Sizes.Multiplicative != nil {
		sizes.Multiplicative = pf.Sizes.Multiplicative
	}
	if !pf.Refund.IsZero() {
		if err := pf.Refund.Decode(policy); err != nil {
			return fmt.Errorf("parse refund policy in %s: %w", path, err)
		}
	}
	return nil
}
