package main

import (
	"fmt"
	"os"

	_ "hose_installation/docs"
)

// @title                       Hose installation API
// @version                     1.0
// @description                 Guided hydraulic hose installation with NFC confirmation.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
