package main

import (
	"os"

	ragchatcmder "github.com/papercomputeco/ragchat/cmd/ragchat"
)

func main() {
	cmd := ragchatcmder.NewRagchatCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
