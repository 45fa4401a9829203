package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldErrorType = "error_type"
	FieldOperation = "operation"
	FieldKey       = "key"
	FieldBytes     = "bytes"
	FieldBackend   = "backend"
	FieldUserEmail = "user_email"
	FieldUserName  = "user_name"
	FieldTxID      = "transaction_id"
	FieldTxTitle   = "transaction_title"
	FieldAmount    = "amount"
	FieldCategory  = "category"
	FieldCount     = "count"
	FieldRemoved   = "removed"

	FieldSchemaVersion = "schema_version"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentCLI      = "cli"
	ComponentIdentity = "identity"
	ComponentLedger   = "ledger"
	ComponentTracker  = "tracker"
	ComponentStorage  = "storage"
	ComponentCache    = "cache"
	ComponentBackend  = "backend"
)

// Operations defines standard operation names
const (
	OpRegister = "register"
	OpSignIn   = "sign_in"
	OpSignOut  = "sign_out"
	OpRestore  = "restore"
	OpAppend   = "append"
	OpSet      = "set"
	OpRemove   = "remove"
	OpValidate = "validate"
	OpMigrate  = "migrate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeStorage       = "storage_error"
	ErrorTypeAuth          = "auth_error"
	ErrorTypeConflict      = "conflict_error"
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

// WithErrorType adds the error category
func (f LogFields) WithErrorType(errorType string) LogFields {
	f[FieldErrorType] = errorType
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithUser adds the user identity fields. Credentials never go through here.
func (f LogFields) WithUser(email, userName string) LogFields {
	f[FieldUserEmail] = email
	if userName != "" {
		f[FieldUserName] = userName
	}
	return f
}

// WithTransaction adds transaction-related fields
func (f LogFields) WithTransaction(id, title, amount, category string) LogFields {
	f[FieldTxID] = id
	f[FieldTxTitle] = title
	f[FieldAmount] = amount
	f[FieldCategory] = category
	return f
}

// WithKey adds the store key a storage operation touched
func (f LogFields) WithKey(key string) LogFields {
	f[FieldKey] = key
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
