package main

import (
	"github.com/corray333/backend-labs/microshop/internal/config"
	"github.com/corray333/backend-labs/microshop/internal/order/app"
)

func main() {
	config.MustInit(config.OrderSvc)
	app.MustNewApp().Run()
}
