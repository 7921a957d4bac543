package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	commands "github.com/lewisedginton/chat-gateway/internal/cli"
)

func main() {
	app := &cli.App{
		Name:    "chat-gateway",
		Usage:   "HTTP gateway exposing a single chat endpoint backed by Gemini",
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-file",
				Value:   "",
				Usage:   "Path to optional YAML configuration file",
				EnvVars: []string{"CONFIG_FILE"},
			},
		},
		Commands: []*cli.Command{
			commands.ServeCommand(),
		},
		DefaultCommand: "serve",
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
