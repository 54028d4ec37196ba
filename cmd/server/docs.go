package main

//go:generate swag init -g cmd/server/main.go -o docs

// @title           Prediction Market API
// @version         0.1.0
// @description     Binary prediction markets with crowd sentiment tracking and reputation scoring.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
