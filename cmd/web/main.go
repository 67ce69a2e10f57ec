package main

import "hirepoint_backend/internal/app"

func main() {
	app.Run()
}
