package config

import (
	"strconv"
	"strings"

	"github.com/rgehrsitz/ukplan/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Get resolves a dotted path such as "income_tax.bands.0.rate" against the
// YAML representation of cfg. Decimal leaves come back as strings. def is
// returned when any segment is missing.
func Get(cfg *domain.TaxYearConfig, path string, def any) any {
	if cfg == nil {
		return def
	}
	tree, err := toTree(cfg)
	if err != nil {
		return def
	}

	var node any = tree
	for _, segment := range strings.Split(path, ".") {
		switch current := node.(type) {
		case map[string]any:
			next, ok := current[segment]
			if !ok {
				return def
			}
			node = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(current) {
				return def
			}
			node = current[idx]
		default:
			return def
		}
	}
	if node == nil {
		return def
	}
	return node
}

// GetDecimal is Get for numeric leaves.
func GetDecimal(cfg *domain.TaxYearConfig, path string, def decimal.Decimal) decimal.Decimal {
	switch v := Get(cfg, path, nil).(type) {
	case string:
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	case int:
		return decimal.NewFromInt(int64(v))
	case float64:
		return decimal.NewFromFloat(v)
	}
	return def
}

func toTree(cfg *domain.TaxYearConfig) (map[string]any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	tree := make(map[string]any)
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}
