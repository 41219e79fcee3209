package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/luisceladatrigo/hw-mockup/internal/logging"
	"github.com/luisceladatrigo/hw-mockup/internal/observability"
	"github.com/luisceladatrigo/hw-mockup/internal/panel"
)

func main() {
	configPath := flag.String("config", "", "path to panel config.toml (optional)")
	flag.Parse()

	logging.ConfigureRuntime()
	observability.InitLogger("paneld")

	cfg := panel.DefaultServiceConfig()
	if *configPath != "" {
		loaded, err := loadServiceConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "paneld: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	svc, err := panel.NewServiceWithConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "paneld: %v\n", err)
		os.Exit(1)
	}
	if err := svc.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "paneld: %v\n", err)
		os.Exit(1)
	}
}
