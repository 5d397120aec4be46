package main

import (
	"os"

	"github.com/papercomputeco/ragchat/cmd/ragchat/cmdutil"
	servecmder "github.com/papercomputeco/ragchat/cmd/ragchat/serve"
)

func main() {
	cmd := servecmder.NewServeCmd()
	cmd.Use = "ragchat-stub"
	cmd.PersistentFlags().BoolP(cmdutil.FlagDebug, "d", false, "Enable debug logging")
	cmd.PersistentFlags().String(cmdutil.FlagConfigDir, "", "Override the .ragchat/ directory")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
