package main

import "github.com/alexalbu001/envreport/cmd"

// version is set during build with -ldflags
var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
