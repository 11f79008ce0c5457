// Package loader turns tabular input files into the in-memory Table the
// pipeline consumes. Recognized formats are delimited text (.csv),
// spreadsheets (.xls/.xlsx via excelize), and record-oriented JSON.
// Per-cell primitive types are inferred on read: empty cells and common NA
// spellings become Missing, float-parseable text becomes a number, and
// everything else stays text. Anything beyond that typing — timestamp
// coercion, imputation, renaming — belongs to the cleaning pipeline.
package loader
