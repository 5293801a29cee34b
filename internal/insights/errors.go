package insights

import "errors"

var (
	ErrUnsupportedTaxonomyFormat = errors.New("unsupported taxonomy format")
	ErrInvalidTaxonomy           = errors.New("invalid taxonomy")
)
