package main

import (
	"fmt"
	"os"

	"github.com/ManojKamatam/LoginApp/internal/bootstrap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	svc, err := bootstrap.InitServers(cfg)
	if err != nil {
		return err
	}

	return svc.Run()
}
