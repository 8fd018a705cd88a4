package main

import (
	"flag"
	"os"

	"github.com/futig/study-helper/internal/builder"
)

func main() {
	env := flag.String("env", "local", "environment name selecting the .env.<name> file")
	flag.Parse()

	app, err := builder.BuildExtractor(*env)
	if err != nil {
		builder.ReportStartupFailure(os.Stdout, err)
		os.Exit(1)
	}

	os.Exit(app.Run(flag.Args()))
}
