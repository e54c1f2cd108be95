package main

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/vityaz/arena/internal/adapters/http/api"
	app "github.com/vityaz/arena/internal/app"
	"github.com/vityaz/arena/internal/config"
)

func TestMainWiring(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			t.Setenv("ARENA_ADDR", ":8080")
			t.Setenv("ARENA_QUEUE_SIZE", "1000")
			t.Setenv("ARENA_WORKER_COUNT", "4")

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.EventQueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable from config", func() {
				svc := app.New(app.WithConfig(config.New()))
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			svc := app.New(app.WithWorkerCount(1))
			ctx := context.Background()
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()

			mux := http.NewServeMux()
			api.NewServer(svc).Register(ctx, mux)

			srv := &http.Server{
				Addr:              ":0",
				Handler:           mux,
				ReadHeaderTimeout: 5 * time.Second,
			}
			convey.So(srv, convey.ShouldNotBeNil)
		})
	})
}
