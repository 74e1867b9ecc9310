// Package textutil provides small text-processing helpers shared across
// subgen: filename/token sanitization and a generic ternary helper.
package textutil
