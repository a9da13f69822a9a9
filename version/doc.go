// Package version reports the pipegen build.
//
//	go build -ldflags "-X github.com/kbukum/pipegen/version.Version=1.2.0"
package version
