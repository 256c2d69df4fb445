// Command ytauth runs the one-time YouTube OAuth consent flow and stores
// the resulting tokens in the social accounts table for the API and
// worker to use.
package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"shortforge/internal/config"
	"shortforge/internal/pkg/logger"
	"shortforge/internal/publish"
	"shortforge/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}
	if cfg.YouTubeClientID == "" || cfg.YouTubeClientSecret == "" {
		fmt.Fprintln(os.Stderr, "YOUTUBE_CLIENT_ID and YOUTUBE_CLIENT_SECRET are required")
		os.Exit(1)
	}

	ctx := context.Background()
	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      "text",
		ServiceName: "shortforge-ytauth",
	})

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.LogFatal("failed to connect to PostgreSQL", err)
	}
	defer pool.Close()

	yt := publish.NewYouTube(cfg.YouTubeClientID, cfg.YouTubeClientSecret, store.NewSocialStore(pool), log)

	// Local callback on a free port
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		log.LogFatal("failed to open callback listener", err)
	}
	defer ln.Close()

	port := ln.Addr().(*net.TCPAddr).Port
	redirectURL := fmt.Sprintf("http://127.0.0.1:%d/callback", port)
	yt.SetRedirectURL(redirectURL)

	state := randomState()
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "invalid state", http.StatusBadRequest)
			errCh <- fmt.Errorf("invalid state")
			return
		}
		if e := q.Get("error"); e != "" {
			http.Error(w, "auth error: "+e, http.StatusBadRequest)
			errCh <- fmt.Errorf("auth error: %s", e)
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			errCh <- fmt.Errorf("missing code")
			return
		}

		fmt.Fprintln(w, "OK. You can close this window and return to the terminal.")
		codeCh <- code
	})

	srv := &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		_ = srv.Serve(ln)
	}()

	fmt.Println("\nOpen this URL in your browser:")
	fmt.Println()
	fmt.Println(yt.AuthURL(state))
	fmt.Println("\nWaiting for authorization on", redirectURL)

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		_ = srv.Close()
		log.LogFatal("authorization failed", err)
	case <-time.After(3 * time.Minute):
		_ = srv.Close()
		log.LogFatal("authorization timed out", fmt.Errorf("no callback within 3 minutes"))
	}
	_ = srv.Close()

	if err := yt.Exchange(ctx, code); err != nil {
		log.LogFatal("token exchange failed", err)
	}

	fmt.Println("\nYouTube account connected. Tokens stored.")
}

func randomState() string {
	b := make([]byte, 18)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
