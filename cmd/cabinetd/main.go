package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/luisceladatrigo/hw-mockup/internal/cabinet"
	"github.com/luisceladatrigo/hw-mockup/internal/logging"
	"github.com/luisceladatrigo/hw-mockup/internal/observability"
)

func main() {
	configPath := flag.String("config", "", "path to cabinet config.toml (optional)")
	flag.Parse()

	logging.ConfigureRuntime()
	observability.InitLogger("cabinetd")

	cfg := cabinet.DefaultServiceConfig()
	if *configPath != "" {
		loaded, err := loadServiceConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cabinetd: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	svc, err := cabinet.NewServiceWithConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cabinetd: %v\n", err)
		os.Exit(1)
	}
	if err := svc.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "cabinetd: %v\n", err)
		os.Exit(1)
	}
}
