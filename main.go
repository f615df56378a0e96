package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/mehrdadmmz/StagePass/cmd/app"
)

// @title           StagePass API
// @description     Ticket sales with capacity control, QR credentials and door validation.
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token
//
// @externalDocs.description  OpenAPI
// @externalDocs.url          https://swagger.io/resources/open-api/
func main() {
	if err := app.Start(); err != nil {
		panic(err)
	}
}
