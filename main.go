package main

import "github.com/chrisdamba/campussim/cmd"

func main() {
	cmd.Execute()
}
