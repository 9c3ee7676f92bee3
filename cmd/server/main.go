package main

import (
	"os"

	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/app"
)

// @title           BizPilot API
// @version         1.0
// @description     Chat backend for the BizPilot business copilot.
// @BasePath        /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	os.Exit(app.Run())
}
