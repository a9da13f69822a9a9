// Package httpclient provides a configurable HTTP client with pluggable
// transport (proxy or caller-supplied RoundTripper), default headers, auth,
// and classified errors.
//
// The rest subpackage adds typed JSON decoding on top.
//
//	client, err := httpclient.New(httpclient.Config{
//	    Timeout: 10 * time.Second,
//	    Proxy:   "http://proxy.internal:3128",
//	    Auth:    httpclient.BearerAuth(token),
//	})
//	resp, err := client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: url})
package httpclient
