// kdcpay-gateway/main.go
package main

import (
	"os"

	"github.com/example/kdcpay-gateway/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
