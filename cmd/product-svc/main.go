package main

import (
	"github.com/corray333/backend-labs/microshop/internal/config"
	"github.com/corray333/backend-labs/microshop/internal/product/app"
)

func main() {
	config.MustInit(config.ProductSvc)
	app.MustNewApp().Run()
}
