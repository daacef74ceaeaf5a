// Package query implements the structured query language evaluated over
// a full scan of the document store: a sealed filter algebra, a JSON
// wire-form parser for it, an evaluator with a generic path walker, and
// comparator construction for multi-key ordering.
//
// The algebra is a sealed interface: only types in this package satisfy
// Filter, so the evaluator's type switch is exhaustive and an unknown
// operator can only arise at parse time, where it is a typed error.
package query
