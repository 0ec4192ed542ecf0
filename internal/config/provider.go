package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/rgehrsitz/ukplan/internal/domain"
	"gopkg.in/yaml.v3"
)

// Provider supplies the active tax-year snapshot. Implementations must return
// domain.ErrConfigurationNotFound (possibly wrapped) when nothing is active.
type Provider interface {
	ActiveConfig() (*domain.TaxYearConfig, error)
}

// FileProvider serves tax years loaded from a YAML file.
type FileProvider struct {
	set domain.TaxConfigurationSet
}

// NewFileProvider loads and validates every tax year in filename.
func NewFileProvider(filename string) (*FileProvider, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read tax configuration %s: %w", filename, err)
	}
	return ParseTaxConfiguration(data)
}

// ParseTaxConfiguration decodes and validates a tax configuration document.
func ParseTaxConfiguration(data []byte) (*FileProvider, error) {
	var set domain.TaxConfigurationSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse tax configuration YAML: %w", err)
	}

	for i := range set.TaxYears {
		if err := ValidateTaxYear(&set.TaxYears[i]); err != nil {
			return nil, fmt.Errorf("tax year %q validation failed: %w", set.TaxYears[i].TaxYear, err)
		}
	}

	if _, err := activeOf(set.TaxYears); err != nil && !errors.Is(err, domain.ErrConfigurationNotFound) {
		return nil, err
	}

	return &FileProvider{set: set}, nil
}

// NewStaticProvider wraps an in-memory configuration, marking it active.
func NewStaticProvider(cfg domain.TaxYearConfig) *FileProvider {
	cfg.IsActive = true
	return &FileProvider{set: domain.TaxConfigurationSet{TaxYears: []domain.TaxYearConfig{cfg}}}
}

// ActiveConfig returns a copy of the single active tax year.
func (fp *FileProvider) ActiveConfig() (*domain.TaxYearConfig, error) {
	return activeOf(fp.set.TaxYears)
}

// TaxYears returns the tax years known to the provider.
func (fp *FileProvider) TaxYears() []string {
	years := make([]string, 0, len(fp.set.TaxYears))
	for _, ty := range fp.set.TaxYears {
		years = append(years, ty.TaxYear)
	}
	return years
}

// Configs returns every tax year, active or not.
func (fp *FileProvider) Configs() []domain.TaxYearConfig {
	out := make([]domain.TaxYearConfig, len(fp.set.TaxYears))
	copy(out, fp.set.TaxYears)
	return out
}

func activeOf(years []domain.TaxYearConfig) (*domain.TaxYearConfig, error) {
	var active *domain.TaxYearConfig
	for i := range years {
		if !years[i].IsActive {
			continue
		}
		if active != nil {
			return nil, fmt.Errorf("%w: %s and %s", domain.ErrMultipleActiveConfigurations, active.TaxYear, years[i].TaxYear)
		}
		active = &years[i]
	}
	if active == nil {
		return nil, domain.ErrConfigurationNotFound
	}
	snapshot := *active
	return &snapshot, nil
}
