package obslog

// Standard field names for consistent structured logging across wotpulse.
// Use these constants instead of raw strings.
const (
	FieldJobName  = "job_name"
	FieldState    = "state"
	FieldDelayMS  = "delay_ms"
	FieldDeadline = "deadline"

	FieldComponent = "component"

	FieldDurationMS = "duration_ms"

	FieldError     = "error"
	FieldErrorType = "error_type"

	FieldFile  = "file"
	FieldQueue = "queue_dir"
)
