package httpclient

// Request describes an outbound HTTP request.
type Request struct {
	Method string
	// Path is appended to the client's BaseURL. Absolute URLs are used as-is.
	Path    string
	Headers map[string]string
	Query   map[string]string
	// Body accepts io.Reader, []byte, string, or any JSON-encodable value.
	Body any
	// Auth overrides the client-level auth for this request.
	Auth *AuthConfig
}

// Response is the result of an HTTP request.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
