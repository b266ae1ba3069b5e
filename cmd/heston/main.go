package main

import (
	"os"
	"path/filepath"

	"github.com/tebeka/atexit"

	"github.com/jwaldner/heston/internal/app"
	"github.com/jwaldner/heston/internal/logger"
)

func main() {
	atexit.Register(func() {
		logger.Close()
	})

	code := app.New(filepath.Base(os.Args[0])).Run(os.Args[1:])
	atexit.Exit(code)
}
