package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"portfolio/config"
	"portfolio/service"
)

const CliVersion = "1.0.0"

var exit = os.Exit

func main() {
	RealMain()
}

// RealMain parses os.Args and runs the command
func RealMain() {
	exit(run(os.Args[1:], service.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("portfolio", flag.ContinueOnError)
	fs.SetOutput(out)
	configPath := fs.String("config", "", "path to the TOML config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	args = fs.Args()
	if len(args) > 0 && strings.ToLower(args[0]) == "version" {
		fmt.Fprintf(out, "portfolio version %s\n", CliVersion)
		return 0
	}
	if len(args) == 0 || strings.ToLower(args[0]) == "help" {
		return service.HandleCommand(nil, args)
	}

	cfg, err := config.Load(config.ResolvePath(*configPath))
	if err != nil {
		fmt.Fprintf(out, "Error: failed to load config: %v\n", err)
		return 1
	}
	service.SetupLogger(cfg)

	return service.HandleCommand(cfg, args)
}
