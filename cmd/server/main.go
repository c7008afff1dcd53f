package main

import (
	fxmodules "kvk-ranker/internal/fx"
	"kvk-ranker/internal/server"

	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(server.Run),
	).Run()
}
