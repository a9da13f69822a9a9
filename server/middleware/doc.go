// Package middleware holds the Gin middleware installed by
// server.ApplyMiddleware. CORS and the body-size limit are plain
// net/http middleware adapted with GinWrap.
package middleware
