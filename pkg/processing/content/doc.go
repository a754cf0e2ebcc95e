// Package content classifies request text into content families (code,
// math, creative, analytical, long-form, general) using pre-compiled
// regular expressions evaluated in a fixed priority order. The content-based
// router maps each family to its preferred models.
package content
