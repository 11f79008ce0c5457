// Package table defines the in-memory tabular model shared by the loader,
// the cleaning pipeline, and the exporters.
//
// A Table is an ordered set of uniquely named columns whose cells are
// row-aligned. Cells are tagged Values (number, text, timestamp, or missing)
// and every column carries an inferred Kind that stages recompute as
// coercion changes the data. Tables are treated as immutable between stages:
// operations that drop or reorder rows return a fresh Table.
package table
