package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/app"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	res, err := application.Bootstrap(context.Background())
	if err != nil {
		log.Fatalf("failed to bootstrap administrator: %v", err)
	}
	if res.GeneratedPassword != "" {
		fmt.Fprintf(os.Stderr, "bootstrap administrator %s created with password: %s\n", cfg.BootstrapAdmin.NationalCode, res.GeneratedPassword)
		fmt.Fprintln(os.Stderr, "change it after the first login, it will not be shown again")
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
