package main

import (
	"fmt"
	"os"

	"github.com/containerd/log"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetOutput(os.Stderr)
	_ = log.SetFormat(log.TextFormat)

	cmd := newCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR, %s\n", err)
		os.Exit(1)
	}
}
