package main

import "github.com/providentiaww/strapi-mcp/cmd/mcp-server/cli"

func main() {
	cli.Execute()
}
