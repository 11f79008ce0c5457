package pipeline

// CleaningFragment is the immutable audit record produced by one Clean call.
type CleaningFragment struct {
	RowsBefore           int `json:"rows_before"`
	RowsAfterCleaning    int `json:"rows_after_cleaning"`
	RemovedDuplicates    int `json:"removed_duplicates"`
	FilledMissingNumeric int `json:"filled_missing_numeric"`
	FilledMissingText    int `json:"filled_missing_text"`
	RemovedInvalidRows   int `json:"removed_invalid_rows"`
}

// TransformFragment is the immutable audit record produced by one Transform
// call.
type TransformFragment struct {
	RowsAfterTransform int `json:"rows_after_transform"`
}

// Report is the merged audit trail of a full pipeline run. Stages never see
// or mutate it; the caller merges the fragments they return.
type Report struct {
	RowsBefore           int `json:"rows_before"`
	RowsAfterCleaning    int `json:"rows_after_cleaning"`
	RowsAfterTransform   int `json:"rows_after_transform"`
	RemovedDuplicates    int `json:"removed_duplicates"`
	FilledMissingNumeric int `json:"filled_missing_numeric"`
	FilledMissingText    int `json:"filled_missing_text"`
	RemovedInvalidRows   int `json:"removed_invalid_rows"`
}

// MergeReports combines the per-stage fragments into the final report.
func MergeReports(c CleaningFragment, t TransformFragment) Report {
	return Report{
		RowsBefore:           c.RowsBefore,
		RowsAfterCleaning:    c.RowsAfterCleaning,
		RowsAfterTransform:   t.RowsAfterTransform,
		RemovedDuplicates:    c.RemovedDuplicates,
		FilledMissingNumeric: c.FilledMissingNumeric,
		FilledMissingText:    c.FilledMissingText,
		RemovedInvalidRows:   c.RemovedInvalidRows,
	}
}
