package main

import "github.com/ThiagoP12/benefit-hub-pro/internal/cli"

func main() {
	cli.Execute()
}
