package main

import (
	"flag"
	"log"

	"kendala-hub/config"
	"kendala-hub/core/appbootstrap"
	"kendala-hub/core/utils"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := utils.NewLogger()
	if err := appbootstrap.Run(cfg, logger); err != nil {
		log.Fatalf("run: %v", err)
	}
}
