package main

import "todoboard/internal/app"

// @title        todoboard API
// @version      1.0
// @description  Todo board with filters, AI suggestions and live updates.
// @BasePath     /
func main() {
	app.Run()
}
