package log

import "budget/internal/core"

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldStore     = "store"
	FieldPath      = "path"
	FieldKind      = "kind"
	FieldCategory  = "category"
	FieldAmount    = "amount"
	FieldDate      = "date"
	FieldCount     = "count"
	FieldPosition  = "position"
	FieldMessageID = "message_id"
	FieldTopic     = "topic"
	FieldDuration  = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentCLI     = "cli"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentBackend = "backend"
	ComponentEvents  = "events"
	ComponentAMQP    = "amqp"
	ComponentKafka   = "kafka"
	ComponentSheets  = "sheets"
	ComponentWorker  = "worker"
)

// Operations defines standard operation names
const (
	OpLoad     = "load"
	OpSave     = "save"
	OpAppend   = "append"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpSync     = "sync"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithStore adds the backing store name
func (f LogFields) WithStore(name string) LogFields {
	f[FieldStore] = name
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithRecord adds record-related fields
func (f LogFields) WithRecord(r core.Record) LogFields {
	f[FieldKind] = r.Kind().String()
	f[FieldCategory] = r.Category()
	f[FieldAmount] = r.Amount().String()
	f[FieldDate] = r.Date()
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
