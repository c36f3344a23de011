package main

import (
	"context"
	"fmt"
	"log"

	"github.com/dmitrijs2005/mangasync/internal/buildinfo"
	"github.com/dmitrijs2005/mangasync/internal/client/cli"
	"github.com/dmitrijs2005/mangasync/internal/client/config"
)

func main() {

	fmt.Println("mangasync client", buildinfo.String())

	ctx := context.Background()

	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
