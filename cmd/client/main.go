package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"

	"github.com/mattn/go-colorable"

	"github.com/omochice/toy-frame-chat/internal/client"
	"github.com/omochice/toy-frame-chat/internal/config"
	"github.com/omochice/toy-frame-chat/internal/logging"
	"github.com/omochice/toy-frame-chat/internal/terminal"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "Path to a TOML settings file")
	transport := flag.String("transport", "", "Transport to the server: tcp or ws (overrides the settings file)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Syntax: %s [flags] <server ip address>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	stderr := colorable.NewColorableStderr()

	// Every setup failure exits with status 0 after a diagnostic.
	if flag.NArg() < 1 {
		flag.Usage()
		return
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return
		}
		cfg = loaded
	}
	if *transport != "" {
		cfg.Transport = *transport
		if err := config.Validate(cfg); err != nil {
			fmt.Fprintln(stderr, err)
			return
		}
	}

	log := logging.New(stderr, cfg.LogLevel, cfg.UseColor(os.Stderr))

	// Interrupt aborts a slow dial; afterwards it ends the process as usual.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	addr := net.JoinHostPort(flag.Arg(0), client.DefaultPort)
	conn, err := client.Dial(ctx, cfg.Transport, addr)
	stop()
	if err != nil {
		log.Error().Err(err).Str("addr", addr).Msg("Cannot connect to the server")
		return
	}
	log.Debug().Str("addr", addr).Str("transport", cfg.Transport).Msg("connected")

	session := client.NewSession(conn, client.Options{
		Input:    os.Stdin,
		Screen:   terminal.NewScreen(colorable.NewColorableStdout()),
		Renderer: terminal.NewRenderer(cfg.UseColor(os.Stdout)),
		Width:    func() int { return terminal.Width(os.Stdout) },
		Logger:   &log,
	})

	if err := session.Login(cfg.Name); err != nil {
		log.Error().Err(err).Msg("Cannot join the chat")
		session.Close()
		return
	}

	// Run returns once the server side is gone. A line still being typed at
	// that point is abandoned when the process exits.
	if err := session.Run(); err != nil {
		log.Debug().Err(err).Msg("session ended")
	}
}
