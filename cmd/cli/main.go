package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/authgate/internal/client/cli"
	"github.com/dmitrijs2005/authgate/internal/client/config"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	global, command := cli.SplitArgs(os.Args[1:])

	cfg, err := config.LoadConfig(global)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app := cli.NewApp(cfg, os.Stdin, os.Stdout)
	if err := app.Run(ctx, command); err != nil {
		log.Fatalf("%v", err)
	}
}
