package main

import (
	"fmt"
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/openauto/car-market-api/api/handlers"
	"github.com/openauto/car-market-api/config"
)

func main() {
	conf, err := config.New()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	a := handlers.App{Config: *conf}
	if err := a.Initialize(); err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}

	zap.S().Infow("car-market-api is up and running",
		"port", conf.Port,
		"url", conf.BaseURL,
	)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%v", conf.Port), a.Router))
}
