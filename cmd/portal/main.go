package main

import (
	"log"
	"os"

	"incubator/portal/client/api"
	"incubator/portal/client/chat"
	"incubator/portal/client/session"
	"incubator/portal/config"
	"incubator/portal/logger"
)

func main() {
	cfg := config.LoadClient()
	lg := logger.New(logger.Options{
		Prefix:       "PORTAL : ",
		RollbarToken: cfg.RollbarToken,
		Environment:  cfg.Environment,
	})

	client := api.New(cfg.BaseURL, api.WithLogger(lg))
	sessions := session.NewManager(session.NewFileStore(cfg.SessionFile), client, lg)
	client.UseTokens(sessions, sessions.HandleUnauthorized)
	if err := sessions.Hydrate(); err != nil {
		lg.Warn("starting without a session", err)
	}

	cli := commandLine{
		api:      client,
		sessions: sessions,
		chat: chat.NewClient(chat.Config{
			WSURL:          cfg.WSURL,
			ReconnectDelay: cfg.ReconnectDelay,
			Log:            lg,
		}, sessions),
		log: lg,
		in:  os.Stdin,
		out: os.Stdout,
	}
	err := cli.run(os.Args)
	if err != nil && err != errHelp {
		lg.Error("command failed", err)
		log.Printf("\nerror: %s\n", err)
	}
	logger.Flush(lg)
	if err != nil {
		os.Exit(1)
	}
}
