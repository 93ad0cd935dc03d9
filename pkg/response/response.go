package response

// Envelope is the JSON error/success shape used by middleware, matching the
// handler-level fres envelopes.
type Envelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func Error(code, message string, data any) Envelope {
	return Envelope{Code: code, Message: message, Data: data}
}

func Success(message string, data any) Envelope {
	return Envelope{Code: "OK", Message: message, Data: data}
}
