// Package normalisers turns indexable files into plain text.
//
// Each subpackage handles one format. The Registry picks a normaliser by
// file extension and falls back to plain text for explicitly named files.
package normalisers
