package main

import "github.com/KaramelBytes/pricecorr-cli/cmd"

func main() {
	cmd.Execute()
}
