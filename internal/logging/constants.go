package logging

// Standardized field names for structured logging.
// These constants keep log output consistent across the pipeline stages,
// so runs can be filtered by dataset, column or output file.
const (
	FieldFile       = "file_path"
	FieldDataset    = "dataset"
	FieldColumn     = "column"
	FieldSeries     = "series"
	FieldReason     = "reason"
	FieldOperation  = "operation"
	FieldStatus     = "status"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
	FieldCount      = "count"
	FieldDelimiter  = "delimiter"
	FieldEncoding   = "encoding"
	FieldOutputFile = "output_file"
	FieldRunID      = "run_id"
)
