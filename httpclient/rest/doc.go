// Package rest provides typed JSON GET on top of httpclient.
//
//	client, _ := rest.New(httpclient.Config{Timeout: 10 * time.Second})
//	resp, err := rest.Get[map[string]any](ctx, client, "https://api.example.com/v1/items")
package rest
