package main

import "github.com/ashpool/techplan/cmd"

func main() {
	cmd.Execute()
}
