package main

import (
	"giftvideo-service/app"
	"giftvideo-service/pkg/observability"
)

func main() {
	observability.StartProfiling("giftvideo-service")
	app.Run()
}
