// Command pipegen generates microflows that call the pipelines of a
// Swagger-described data service.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
