package log

// Common field names for structured logging
const (
	FieldComponent    = "component"
	FieldRequestID    = "request_id"
	FieldClientIP     = "client_ip"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldStatusCode   = "status_code"
	FieldDuration     = "duration_ms"
	FieldError        = "error"
	FieldOperation    = "operation"
	FieldImportID     = "import_id"
	FieldAttempted    = "rows_attempted"
	FieldImported     = "rows_imported"
	FieldSkipped      = "rows_skipped"
	FieldUnclassified = "rows_unclassified"
	FieldPeriod       = "period"
	FieldCurrency     = "currency"
	FieldHeaders      = "headers"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentImport    = "import"
	ComponentLedger    = "ledger"
	ComponentReport    = "report"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentRateLimit = "rate_limit"
	ComponentBackend   = "backend"
)

// Operations defines standard operation names
const (
	OpImport   = "import"
	OpPreview  = "preview"
	OpList     = "list"
	OpSummary  = "summary"
	OpCompose  = "compose"
	OpPublish  = "publish"
	OpSeed     = "seed"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithImport adds the counters of one import run
func (f LogFields) WithImport(id string, attempted, imported, skipped, unclassified int) LogFields {
	if id != "" {
		f[FieldImportID] = id
	}
	f[FieldAttempted] = attempted
	f[FieldImported] = imported
	f[FieldSkipped] = skipped
	f[FieldUnclassified] = unclassified
	return f
}

// WithPeriod adds the reporting period and currency
func (f LogFields) WithPeriod(period, currency string) LogFields {
	f[FieldPeriod] = period
	if currency != "" {
		f[FieldCurrency] = currency
	}
	return f
}

// WithHTTP adds request and response fields
func (f LogFields) WithHTTP(method, path string, statusCode int, durationMs int64) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
