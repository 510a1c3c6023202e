package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snakearena/server"
	"snakearena/snake"
)

// SnakeArena 入口：启动 HTTP + WebSocket 服务，每个房间跑一局连续移动的贪吃蛇
func main() {
	def := snake.DefaultConfig()
	logOpts := server.DefaultLogOptions()

	var (
		addr      string
		web       string
		direction string
		opts      = server.DefaultRoomOptions()
	)
	flag.StringVar(&addr, "addr", ":8080", "server listen address, e.g. :8080")
	flag.StringVar(&web, "web", "web", "static files directory served at /")
	flag.StringVar(&logOpts.Path, "log", logOpts.Path, "log file path")
	flag.StringVar(&logOpts.Level, "log-level", logOpts.Level, "log level: debug, info, warn, error")
	flag.IntVar(&logOpts.MaxSizeMB, "log-max-size", logOpts.MaxSizeMB, "log file size in MB before rotation")
	flag.IntVar(&opts.Game.Width, "width", def.Width, "board width in cells")
	flag.IntVar(&opts.Game.Height, "height", def.Height, "board height in cells")
	flag.Float64Var(&opts.Game.Speed, "speed", def.Speed, "snake speed in cells per millisecond")
	flag.IntVar(&opts.Game.SnakeLength, "length", def.SnakeLength, "initial snake length in cells")
	flag.StringVar(&direction, "direction", "right", "initial heading: up, right, down, left")
	flag.IntVar(&opts.TicksPerSecond, "tps", server.TicksPerSecond, "simulation ticks per second")
	flag.Uint64Var(&opts.Seed, "seed", 0, "food placement seed (0 = time based)")
	flag.Parse()

	opts.Game.Direction = snake.ParseMovement(direction).Vector()
	if err := opts.Game.Validate(); err != nil {
		flag.Usage()
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}

	if err := server.InitLogger(logOpts); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	rm := server.NewRoomManager(opts)
	// 先预创建默认房间，便于快速试跑
	if _, err := rm.GetOrCreateRoom(server.DefaultRoomID); err != nil {
		server.Log.Fatalf("create default room: %v", err)
	}

	mux := http.NewServeMux()
	rm.Register(mux)
	// 前后端分离：/ 映射到静态资源目录（渲染与键盘输入在浏览器端）
	mux.Handle("/", http.FileServer(http.Dir(web)))

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		server.Log.Infof("SnakeArena listening on %s; open http://localhost%v/", addr, addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("Shutting down...")

	rm.StopAll()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		server.Log.Errorf("shutdown: %v", err)
	}
}
