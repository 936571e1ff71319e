package main

import "paylink-core/cmd/paylink-cli/cmd"

func main() {
	cmd.Execute()
}
