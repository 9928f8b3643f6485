package main

import "customer-sync/cmd"

func main() {
	cmd.Execute()
}
