// Package redis stores host documents and modules in Redis through go-redis.
package redis
