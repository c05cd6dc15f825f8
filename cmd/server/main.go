package main

import "github.com/Togather-Foundation/eventrip/cmd/server/cmd"

func main() {
	cmd.Execute()
}
