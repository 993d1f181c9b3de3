package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"

	"github.com/jrsteele09/go-oauth-session/auth"
	"github.com/jrsteele09/go-oauth-session/internal/config"
	"github.com/jrsteele09/go-oauth-session/oauth2"
	"github.com/jrsteele09/go-oauth-session/rest"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error fetching token: %s\n", err)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	if c.GetCredential() == "" {
		return errors.New("OAUTH_CREDENTIAL is not set")
	}

	client := rest.NewHTTPClient(rest.WithHTTPClient(&http.Client{
		Timeout: time.Duration(c.GetRequestTimeoutSeconds()) * time.Second,
	}))

	ctx := context.Background()
	startTimeMillis := time.Now().UnixMilli()

	response, err := auth.FetchToken(ctx, client, map[string]string{}, c.GetCredential(), c.GetScope(), c.GetServerURI())
	if err != nil {
		return fmt.Errorf("client credentials grant: %w", err)
	}

	serialized, err := oauth2.TokenResponseToJSON(response)
	if err != nil {
		return fmt.Errorf("serializing token response: %w", err)
	}
	fmt.Fprintln(os.Stdout, serialized)

	if !c.GetKeepRefreshed() {
		return nil
	}

	// hold the session open and keep the token refreshed until interrupted
	parent := auth.NewSession(map[string]string{}, "", "", c.GetCredential(), c.GetScope(), c.GetServerURI())
	scheduler := auth.NewScheduler()
	session := auth.FromTokenResponse(client, scheduler, response, startTimeMillis, parent)

	log.Printf("Keeping session refreshed, press Ctrl+C to stop\n")
	waitForStopSignal()

	session.StopRefreshing()
	scheduler.Close()
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
