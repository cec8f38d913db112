package main

import "github.com/qalam-ocr/qalam/cmd/qalam/cmd"

func main() {
	cmd.Execute()
}
