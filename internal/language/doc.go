// Package language provides unified language code normalization, mapping,
// and the filesystem-safety validation gate used before a language code is
// joined into a translation-rules file path.
package language
