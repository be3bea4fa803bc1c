package main

import (
	"os"

	"doc-translator/internal/cli"
	"doc-translator/internal/logger"
	"doc-translator/internal/types"
)

func main() {
	flags := cli.NewFlags()
	root := cli.NewRootCommand(flags)
	if err := root.Execute(); err != nil {
		logger.Error("command failed", err,
			logger.String("code", string(types.CodeOf(err))))
		os.Exit(1)
	}
}
