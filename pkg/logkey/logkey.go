package logkey

// Attribute keys shared by every slog call so log lines can be grepped by field.
const (
	TraceID    = "TRACE ID"
	ERROR      = "ERROR"
	Email      = "Email"
	ProductID  = "ProductID"
	OrderID    = "OrderID"
	CustomerID = "CustomerID"
)
