package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"

	"gemini-relay/internal/chat"
	"gemini-relay/internal/config"
	"gemini-relay/internal/logger"
	"gemini-relay/internal/models"
)

const (
	spellCommand = "/spell "
	quitCommand  = "/quit"
)

var (
	userColor    = color.New(color.FgHiWhite, color.BgBlue)
	botColor     = color.New(color.FgBlack, color.BgWhite)
	typingColor  = color.New(color.Faint)
	bannerColor  = color.New(color.FgRed, color.Bold)
	hintColor    = color.New(color.Faint)
	spellingText = color.New(color.FgGreen)
)

func main() {
	if err := run(os.Stdin, os.Stdout); err != nil {
		slog.Error("chat client stopped", logger.Err(err))
		os.Exit(1)
	}
}

func run(in io.Reader, out io.Writer) error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	color.NoColor = color.NoColor || cfg.LogNoColor
	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, &logger.Options{
		Level:      logger.ParseLevel(cfg.LogLevel),
		TimeFormat: time.TimeOnly,
		MsgPrefix:  "| ",
		NoColor:    cfg.LogNoColor,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	relay := chat.NewHTTPRelay(cfg.RelayURL, nil)
	session := chat.NewSession(relay)

	fmt.Fprintf(out, "%s\n", hintColor.Sprintf("Connected to %s. Type a message, %q to spell-check, %s to exit.", cfg.RelayURL, strings.TrimSpace(spellCommand)+" <text>", quitCommand))
	render(out, session.View())

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Fprint(out, "> ")

		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case line, ok = <-lines:
			if !ok {
				return nil
			}
		}

		switch {
		case strings.TrimSpace(line) == "":
			continue
		case strings.TrimSpace(line) == quitCommand:
			return nil
		case strings.HasPrefix(line, spellCommand):
			text := strings.TrimPrefix(line, spellCommand)
			fmt.Fprintln(out, typingColor.Sprint("checking..."))
			checked, err := relay.SpellCheck(ctx, text)
			if err != nil {
				fmt.Fprintln(out, bannerColor.Sprint("Request Error: "+err.Error()))
				continue
			}
			fmt.Fprintln(out, spellingText.Sprint(checked))
		default:
			fmt.Fprintln(out, typingColor.Sprint("..."))
			if err := session.Submit(ctx, line); errors.Is(err, chat.ErrEmptyInput) {
				continue
			}
			view := session.View()
			render(out, view[len(view)-1:])
			if banner := session.Err(); banner != "" {
				fmt.Fprintln(out, bannerColor.Sprint("Request Error: "+banner))
				session.DismissError()
			}
		}
	}
}

func render(out io.Writer, entries []chat.Entry) {
	for _, e := range entries {
		switch e.Role {
		case models.RoleUser:
			fmt.Fprintln(out, "U "+userColor.Sprint(" "+e.Text+" "))
		case models.RolePending:
			fmt.Fprintln(out, "G "+typingColor.Sprint("..."))
		default:
			fmt.Fprintln(out, "G "+botColor.Sprint(" "+e.Text+" "))
		}
	}
}
