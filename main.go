package main

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/leofalp/duochat/cmd"
)

func main() {
	cmd.Execute()
}
