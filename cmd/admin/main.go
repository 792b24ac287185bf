package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/usuarios/internal/admin"
	"github.com/dmitrijs2005/usuarios/internal/flagx"
	"github.com/dmitrijs2005/usuarios/internal/logging"
	"github.com/dmitrijs2005/usuarios/internal/server"
	"github.com/dmitrijs2005/usuarios/internal/server/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)

	db, accounts, err := server.NewAccountService(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	err = admin.NewApp(accounts, os.Stdout).Run(ctx, flagx.Positional(os.Args[1:]))

	accounts.Wait()
	_ = db.Close()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
