// Example shell plugin. Build with:
//
//	go build -buildmode=plugin -o greet.so ./plugins/examples
//
// and list the resulting file under "plugins" in the config.
package main

import "fmt"

type GreetPlugin struct{}

func (p *GreetPlugin) Name() string {
	return "greet"
}

func (p *GreetPlugin) Execute(args []string) error {
	fmt.Println("hello from the greet plugin:", args)
	return nil
}

var Plugin GreetPlugin

// main is required for the package to compile as a main package; it is
// never called when the package is built with -buildmode=plugin.
func main() {}
