package log

import "sort"

// Attribute keys shared by every component, so log queries can rely on
// one spelling.
const (
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldSuccess   = "success"

	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldUserAgent  = "user_agent"
	FieldReferer    = "referer"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"

	FieldUserID        = "user_id"
	FieldTransactionID = "transaction_id"
	FieldDescription   = "description"
	FieldAmountCents   = "amount_cents"
	FieldCategory      = "category"

	FieldBatchID      = "batch_id"
	FieldSource       = "source"
	FieldRowsSeen     = "rows_seen"
	FieldRowsAccepted = "rows_accepted"
	FieldRowsRejected = "rows_rejected"
	FieldSheetsRange  = "sheets_range"
)

const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentAuth      = "auth"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentImport    = "import"
	ComponentStorage   = "storage"
	ComponentCache     = "cache"
	ComponentInvoice   = "invoice"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
)

const (
	OpRegister = "register"
	OpLogin    = "login"
	OpImport   = "import"
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpGenerate = "generate"
	OpPublish  = "publish"
	OpAppend   = "append"
	OpShutdown = "shutdown"
)

// LogFields accumulates attributes; every setter returns the receiver so
// calls chain.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError is a no-op for a nil error.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

func (f LogFields) WithUser(userID int64) LogFields {
	f[FieldUserID] = userID
	return f
}

// WithImport records the row accounting of one batch.
func (f LogFields) WithImport(source, batchID string, seen, accepted, rejected int) LogFields {
	f[FieldSource] = source
	f[FieldBatchID] = batchID
	f[FieldRowsSeen] = seen
	f[FieldRowsAccepted] = accepted
	f[FieldRowsRejected] = rejected
	return f
}

func (f LogFields) WithTransaction(id int64, desc string, amountCents int64, category string) LogFields {
	f.WithTransactionID(id)
	f[FieldDescription] = desc
	f[FieldAmountCents] = amountCents
	f[FieldCategory] = category
	return f
}

func (f LogFields) WithTransactionID(id int64) LogFields {
	f[FieldTransactionID] = id
	return f
}

// WithHTTPRequest skips empty header values.
func (f LogFields) WithHTTPRequest(method, path, query, userAgent, referer string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	for k, v := range map[string]string{FieldQuery: query, FieldUserAgent: userAgent, FieldReferer: referer} {
		if v != "" {
			f[k] = v
		}
	}
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice flattens the fields into slog key/value pairs ordered by key, so
// text output is stable between runs.
func (f LogFields) ToSlice() []any {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]any, 0, len(f)*2)
	for _, k := range keys {
		out = append(out, k, f[k])
	}
	return out
}
