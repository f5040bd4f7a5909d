package main

import (
	"os"

	"github.com/GoUserGroups/GoUserGroups/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
