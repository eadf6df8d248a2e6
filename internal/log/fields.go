package log

// Standard field keys so log records stay greppable across components.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldPath      = "path"
	FieldMethod    = "method"
	FieldClientIP  = "client_ip"
	FieldDuration  = "duration_ms"
	FieldStatus    = "status"
	FieldError     = "error"
	FieldOutcome   = "outcome"
	FieldRows      = "rows"
)

// Component names used across the application.
const (
	ComponentHTTP    = "http"
	ComponentIntake  = "intake"
	ComponentLedger  = "ledger"
	ComponentCatalog = "catalog"
	ComponentMirror  = "mirror"
)
