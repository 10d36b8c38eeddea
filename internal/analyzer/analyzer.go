package analyzer

import (
	"github.com/mcncl/marshalkit/internal/config"
	"github.com/mcncl/marshalkit/internal/errors"
	"github.com/mcncl/marshalkit/internal/models"
	"github.com/mcncl/marshalkit/internal/parser"
)

// Analyzer inspects JSON documents and decides whether they are envelopes.
type Analyzer struct {
	// config holds the aliases used to flag known wrapper keys
	config *config.Config
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		config: config.NewConfig(),
	}
}

// NewAnalyzerWithConfig creates a new Analyzer instance with custom configuration.
func NewAnalyzerWithConfig(cfg *config.Config) *Analyzer {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Analyzer{
		config: cfg,
	}
}

// Analyze reports the shape of doc. A document is enveloped when its root is
// an object with exactly one field holding an object or an array.
func (a *Analyzer) Analyze(doc models.Document) (models.Analysis, error) {
	if len(doc.Raw) == 0 {
		return models.Analysis{}, errors.NewAnalysisError("document is empty", errors.ErrEmptyInput)
	}

	result := models.Analysis{RootKind: doc.Kind}
	if result.RootKind == models.Unknown {
		result.RootKind = parser.KindOf(doc.Raw)
	}
	if result.RootKind != models.Object {
		return result, nil
	}

	count, err := parser.CountFields(doc.Raw)
	if err != nil {
		return models.Analysis{}, errors.NewAnalysisError("failed to count fields", err)
	}
	result.FieldCount = count
	if count == 0 {
		return result, nil
	}

	key, _, kind, err := parser.FirstField(doc.Raw)
	if err != nil {
		return models.Analysis{}, errors.NewAnalysisError("failed to read first field", err)
	}
	result.FirstKey = key
	result.PayloadKind = kind
	result.Enveloped = count == 1 && (kind == models.Object || kind == models.Array)
	result.KnownAlias = a.config.IsAlias(key)

	return result, nil
}

// Unwrap returns the payload of an enveloped document along with its key.
// Documents that are not envelopes are returned unchanged with an empty key.
func (a *Analyzer) Unwrap(doc models.Document) (models.Document, string, error) {
	analysis, err := a.Analyze(doc)
	if err != nil {
		return models.Document{}, "", err
	}
	if !analysis.Enveloped {
		return doc, "", nil
	}

	key, payload, kind, err := parser.FirstField(doc.Raw)
	if err != nil {
		return models.Document{}, "", errors.NewAnalysisError("failed to extract payload", err)
	}
	return models.Document{Raw: payload, Kind: kind}, key, nil
}
