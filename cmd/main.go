// cmd/main.go
package main

import (
	"go-bank-ledger/app"
	"go-bank-ledger/logger"
	"os"
)

func main() {
	if err := app.Run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		logger.Log.Fatalf("Ledger failed: %v", err)
	}
}
