package main

import (
	"flag"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/xwin/internal/config"
)

const pathUsage = "Config file path (default: $XDG_CONFIG_HOME/xwin/config.yaml)"

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runConfig(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(stderr, "Usage:")
		fmt.Fprintln(stderr, "  xwin config validate [--path PATH]")
		fmt.Fprintln(stderr, "  xwin config print [--path PATH] [--defaults]")
		fmt.Fprintln(stderr, "  xwin config explain [--path PATH] <yaml.path>")
		return 2
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)
	path := fs.String("path", "", pathUsage)

	switch args[0] {
	case "validate":
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintf(stdout, "config: ok (%d file(s))\n", len(res.Files))
		return 0

	case "print":
		defaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		cfg := config.DefaultConfig()
		if !*defaults {
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(stderr, err)
				return 1
			}
			cfg = res.Config
		}
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		stdout.Write(data)
		return 0

	case "explain":
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(stderr, "explain requires <yaml.path>; known paths:")
			for _, p := range config.Paths() {
				fmt.Fprintln(stderr, "  "+p)
			}
			return 2
		}
		query := fs.Arg(0)

		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		value, src, err := config.Explain(res, query)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintf(stdout, "path: %s\n", query)
		fmt.Fprintf(stdout, "source: %s\n", src)
		fmt.Fprintf(stdout, "value: %s", out)
		return 0

	default:
		fmt.Fprintf(stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}
