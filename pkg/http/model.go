package http

// ErrorBody is the body of errors that carry no extra detail.
type ErrorBody struct {
	Error string `json:"error" example:"Missing required query param: symbol"`
}

// ValidationError is one entry of a 400 response's "details".
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_REQUIRED"`
	Field   string                 `json:"field,omitempty" example:"symbol"`
	Message string                 `json:"message,omitempty" example:"Missing required query param: symbol"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// ListDataResponse wraps list endpoints as {rows, total}.
type ListDataResponse struct {
	Rows  interface{} `json:"rows"`
	Total int         `json:"total"`
}
