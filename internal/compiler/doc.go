// Package compiler implements the tephra compile pipeline: comment stripping,
// dependency collection, inheritance resolution, include expansion, tag
// transpilation to PHP, and the optional whitespace/comment post-filter.
//
// Stages run in a fixed order and every stage operates on an owned copy of the
// template text; source files are never mutated. All stages receive their
// configuration explicitly, so concurrent compiles under different
// configurations are safe without locking.
package compiler
