package main

import "mcu-console/cmd"

func main() {
	cmd.Execute()
}
