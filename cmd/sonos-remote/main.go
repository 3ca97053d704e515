// Command sonos-remote controls the volume and playback of a single Sonos speaker.
//
// Usage:
//
//	sonos-remote [-config remote.yaml] volume          print the current volume
//	sonos-remote [-config remote.yaml] volume <0-100>  set the volume
//	sonos-remote [-config remote.yaml] toggle          toggle play/pause
//	sonos-remote [-config remote.yaml] status          probe and print status as JSON
//	sonos-remote [-config remote.yaml] serve           run the HTTP control API
//	sonos-remote [-config remote.yaml] token <name>    print an API access token
//
// The speaker address comes from SONOS_IP / SONOS_PORT or the config file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/strefethen/sonos-remote-go/internal/auth"
	"github.com/strefethen/sonos-remote-go/internal/config"
	"github.com/strefethen/sonos-remote-go/internal/remote"
	"github.com/strefethen/sonos-remote-go/internal/server"
	"github.com/strefethen/sonos-remote-go/internal/sonos/soap"
)

var errUsage = errors.New("usage: sonos-remote [-config file] volume [level] | toggle | status | serve | token <name>")

func main() {
	configPath := flag.String("config", os.Getenv("SONOS_REMOTE_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	if err := run(context.Background(), cfg, flag.Args(), os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}
}

func newRemote(cfg config.Config) *remote.Remote {
	client := soap.NewClient(soap.Endpoint{Host: cfg.SonosIP, Port: cfg.SonosPort}, cfg.SonosTimeout())
	return remote.New(client, remote.Options{ConfirmToggle: cfg.SonosConfirmToggle})
}

func run(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "volume":
		rc := newRemote(cfg)
		if len(args) == 1 {
			volume := rc.GetVolume(ctx)
			if volume == remote.UnknownVolume {
				return fmt.Errorf("could not read volume from %s", rc.Endpoint().BaseURL())
			}
			fmt.Fprintln(out, volume)
			return nil
		}
		level, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid volume %q", args[1])
		}
		if !rc.SetVolume(ctx, level) {
			return fmt.Errorf("could not set volume on %s", rc.Endpoint().BaseURL())
		}
		fmt.Fprintln(out, remote.ClampVolume(level))
		return nil

	case "toggle":
		rc := newRemote(cfg)
		if !rc.TogglePlayPause(ctx) {
			return fmt.Errorf("could not toggle playback on %s", rc.Endpoint().BaseURL())
		}
		if rc.IsPlaying() {
			fmt.Fprintln(out, "playing")
		} else {
			fmt.Fprintln(out, "paused")
		}
		return nil

	case "status":
		rc := newRemote(cfg)
		rc.GetVolume(ctx)
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(rc.Status())

	case "token":
		if len(args) < 2 || strings.TrimSpace(args[1]) == "" {
			return errUsage
		}
		name := strings.TrimSpace(args[1])
		token, err := auth.GenerateAccessToken(cfg, auth.TokenPayload{Sub: name, DeviceName: name})
		if err != nil {
			return err
		}
		fmt.Fprintln(out, token)
		return nil

	case "serve":
		return serve(cfg)

	default:
		return errUsage
	}
}

func serve(cfg config.Config) error {
	rc := newRemote(cfg)
	addr := cfg.Host + ":" + cfg.Port

	handler, shutdownHandler, err := server.NewHandler(cfg, rc, server.Options{})
	if err != nil {
		return fmt.Errorf("server init error: %w", err)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownCh
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdownHandler(ctx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}()

	log.Printf("sonos-remote listening on %s, controlling %s (auth %t)", addr, rc.Endpoint().BaseURL(), cfg.AuthEnabled())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
