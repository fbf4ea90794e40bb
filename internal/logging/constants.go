package logging

// Field names shared by every component so log lines can be filtered on them.
const (
	FieldOperation     = "operation"
	FieldTransactionID = "transaction_id"
	FieldCategory      = "category"
	FieldCount         = "count"
	FieldGeneration    = "generation"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldFile          = "file_path"
	FieldBackend       = "backend"
	FieldUser          = "user"
	FieldQuery         = "query"
	FieldFilter        = "filter"
	FieldError         = "error"
)
