package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/gopherblog/internal/server"
	"github.com/dmitrijs2005/gopherblog/internal/server/config"
)

func main() {

	ctx := context.Background()

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Printf("%v", err)
		os.Exit(2)
	}

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	app.Run(ctx)

}
