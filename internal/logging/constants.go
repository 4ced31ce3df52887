package logging

// Standardized field names for structured logging.
// These constants keep log output consistent across the pipeline so runs can be
// filtered by file, category or run id.
const (
	FieldFile        = "file_path"
	FieldComponent   = "component"
	FieldCategory    = "category"
	FieldDescription = "description"
	FieldPattern     = "pattern"
	FieldAccount     = "account"
	FieldIdentityKey = "identity_key"
	FieldRunID       = "run_id"
	FieldReason      = "reason"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldDuration    = "duration_ms"
	FieldCount       = "count"
	FieldLine        = "line"
	FieldBackend     = "backend"
	FieldOracle      = "oracle"
)
