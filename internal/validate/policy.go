package validate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadPolicy reads a YAML trust-policy file. Lists present in the file
// replace the corresponding built-in list; absent lists keep their
// defaults.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()

	data, err := os.ReadFile(path)
	if err != nil {
		return policy, fmt.Errorf("read policy file %s: %w", path, err)
	}

	var override Policy
	if err := yaml.Unmarshal(data, &override); err != nil {
		return policy, fmt.Errorf("parse policy file %s: %w", path, err)
	}

	if len(override.Tier1) > 0 {
		policy.Tier1 = override.Tier1
	}
	if len(override.Tier2) > 0 {
		policy.Tier2 = override.Tier2
	}
	if len(override.Tier3) > 0 {
		policy.Tier3 = override.Tier3
	}
	if len(override.Blogs) > 0 {
		policy.Blogs = override.Blogs
	}
	return policy, nil
}
