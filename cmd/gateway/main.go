package main

import (
	"github.com/corray333/backend-labs/microshop/internal/config"
	"github.com/corray333/backend-labs/microshop/internal/gateway/app"
)

func main() {
	config.MustInit(config.Gateway)
	app.MustNewApp().Run()
}
