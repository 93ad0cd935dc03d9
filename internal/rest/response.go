package rest

// ResponseError is the JSON error body for handler failures.
type ResponseError struct {
	Message string `json:"message"`
}
