// Villaged runs a village headless and serves it over HTTP and websockets.
//
// Environment (also read from a .env file):
//
//	PORT            listen port, default 8080
//	VILLAGE_SAVE    save file, default village-save.json
//	VILLAGE_TUNING  optional YAML tuning file
//	VILLAGE_WIDTH   virtual viewport width, default 1280
//	VILLAGE_HEIGHT  virtual viewport height, default 720
//	GIN_MODE        gin mode, default release
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/phanxgames/village"
	"github.com/phanxgames/village/server"
)

func main() {
	_ = godotenv.Load()
	village.ConfigureLogging()
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	log := village.Log

	tuning := village.DefaultTuning()
	if path := os.Getenv("VILLAGE_TUNING"); path != "" {
		t, err := village.LoadTuning(path)
		if err != nil {
			log.WithError(err).Fatal("tuning")
		}
		tuning = t
	}
	savePath := envOr("VILLAGE_SAVE", "village-save.json")

	w := village.NewWorld(village.WorldConfig{
		Tuning: &tuning,
		Width:  envFloat("VILLAGE_WIDTH", 1280),
		Height: envFloat("VILLAGE_HEIGHT", 720),
	})
	if snap, err := village.LoadFile(savePath); err == nil {
		w.Load(snap)
	} else {
		log.WithError(err).Info("starting a new village")
		w.Reset()
	}

	hub := server.NewHub()
	w.SetEventSink(hub)
	loop := village.NewLoop(w, village.LoopConfig{
		SavePath:   savePath,
		SavePolicy: village.SaveWithSimState,
		OnUpdate:   hub.Publish,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              ":" + envOr("PORT", "8080"),
		Handler:           server.New(loop, hub).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithFields(logrus.Fields{"addr": srv.Addr}).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http server")
			stop()
		}
	}()

	loopErr := make(chan error, 1)
	go func() { loopErr <- loop.Run(ctx) }()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	if err := <-loopErr; err != nil {
		log.WithError(err).Error("final save failed")
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
