// Package extractors provides implementations of the Extractor interface
// for various upload formats. Each extractor knows how to pull indexable
// text out of a specific file type.
//
// Extractors are selected by the Registry based on filename suffix.
package extractors
