package main

import "github.com/frankli0324/go-httpconn/cmd/httpconn/cmd"

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cmd.Execute(version, buildTime)
}
