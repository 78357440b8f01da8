package factory

import (
	"fmt"

	"go-skin-detector/internal/analyzer"
	"go-skin-detector/internal/intake"
)

// VerdictMode selects how analysis outcomes are drawn
type VerdictMode string

const (
	// RandomVerdicts draws an unbiased coin per run
	RandomVerdicts VerdictMode = "random"
	// AlwaysTrueVerdicts always detects the skin
	AlwaysTrueVerdicts VerdictMode = "always_true"
	// AlwaysFalseVerdicts never detects the skin
	AlwaysFalseVerdicts VerdictMode = "always_false"
)

// LoaderType represents different ways of reading uploads
type LoaderType string

const (
	// DataURILoader embeds uploads as base64 data URIs
	DataURILoader LoaderType = "data_uri"
)

// VerdictFactory creates verdict sources
type VerdictFactory interface {
	CreateVerdictSource(mode VerdictMode) (analyzer.VerdictSource, error)
}

// LoaderFactory creates upload loaders
type LoaderFactory interface {
	CreateLoader(loaderType LoaderType) (intake.Loader, error)
}

// verdictFactory implements VerdictFactory
type verdictFactory struct{}

// NewVerdictFactory creates a new verdict factory
func NewVerdictFactory() VerdictFactory {
	return &verdictFactory{}
}

// CreateVerdictSource creates a verdict source for the given mode
func (f *verdictFactory) CreateVerdictSource(mode VerdictMode) (analyzer.VerdictSource, error) {
	switch mode {
	case RandomVerdicts, "":
		return analyzer.NewRandomVerdictSource(), nil
	case AlwaysTrueVerdicts:
		return analyzer.FixedVerdict(true), nil
	case AlwaysFalseVerdicts:
		return analyzer.FixedVerdict(false), nil
	default:
		return nil, fmt.Errorf("unsupported verdict mode: %s", mode)
	}
}

// loaderFactory implements LoaderFactory
type loaderFactory struct{}

// NewLoaderFactory creates a new loader factory
func NewLoaderFactory() LoaderFactory {
	return &loaderFactory{}
}

// CreateLoader creates a loader based on the specified type
func (f *loaderFactory) CreateLoader(loaderType LoaderType) (intake.Loader, error) {
	switch loaderType {
	case DataURILoader, "":
		return intake.NewDataURILoader(), nil
	default:
		return nil, fmt.Errorf("unsupported loader type: %s", loaderType)
	}
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	VerdictFactory VerdictFactory
	LoaderFactory  LoaderFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory() *ComponentFactory {
	return &ComponentFactory{
		VerdictFactory: NewVerdictFactory(),
		LoaderFactory:  NewLoaderFactory(),
	}
}
