// Package analysis provides spectral tools for per-frame series recorded by
// headless runs, such as the field's mean opacity.
package analysis
