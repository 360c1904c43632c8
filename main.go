package main

import "github.com/hightman/xunsearch/cmd"

func main() {
	cmd.Execute()
}
