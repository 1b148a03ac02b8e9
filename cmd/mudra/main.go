package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/log"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/shape"
	"github.com/ayusman/mudra/internal/tray"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default ~/.mudra/config.yaml if present)")
	headless := flag.Bool("headless", false, "run without the system tray")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *headless {
		cfg.Tray = false
	}

	log.Init(cfg.LogLevel)

	if err := run(cfg); err != nil {
		log.Error("mudra failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads path, or the per-user config when path is empty, or
// falls back to defaults when neither exists.
func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".mudra", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return config.Load(p)
		}
	}
	return config.Default(), nil
}

func run(cfg config.Config) error {
	kind, err := shape.ParseKind(cfg.Render.Shape)
	if err != nil {
		return err
	}

	a := app.New(app.Config{
		Camera:    cfg.Camera,
		Tracking:  cfg.Tracking,
		Metrics:   cfg.Metrics,
		Field:     cfg.Field,
		RenderFPS: cfg.Render.FPS,
		StreamFPS: cfg.Render.StreamFPS,
		Shape:     kind,
		Color:     cfg.Render.Color,
	})
	a.SetEnabled(cfg.Enabled)

	if err := a.Start(); err != nil {
		return err
	}
	defer a.Stop()

	webDir := findWebDir(cfg.Server.StaticDir)
	if webDir != "" {
		log.Info("serving static files", "dir", webDir)
	}

	srv := server.New(server.Config{StaticDir: webDir, App: a})
	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server failed: %w", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Tray {
		t := tray.New(cfg.Enabled, kind)
		t.OnToggle(func(enabled bool) {
			a.SetEnabled(enabled)
			log.Info("tracking toggled", "enabled", enabled, "source", "tray")
		})
		t.OnShape(func(k shape.Kind) {
			if err := a.SetShape(k); err != nil {
				log.Warn("shape rejected", "shape", k, "error", err)
			}
		})
		t.OnOpen(func() {
			if err := openBrowser(browserURL(cfg.Server.Addr)); err != nil {
				log.Warn("could not open browser", "error", err)
			}
		})

		go func() {
			select {
			case <-ctx.Done():
			case err := <-errCh:
				errCh <- err
			}
			t.Quit()
		}()
		t.Run()
	} else {
		select {
		case <-ctx.Done():
		case err := <-errCh:
			errCh <- err
		}
	}

	log.Info("shutting down")
	srv.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown", "error", err)
	}

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

// findWebDir resolves the renderer directory. It checks dir as given, then
// "../web", "../../web" and ~/.mudra/web, returning "" if none exists.
func findWebDir(dir string) string {
	candidates := []string{dir, "../web", "../../web"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".mudra", "web"))
	}

	for _, p := range candidates {
		if p == "" {
			continue
		}
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

func browserURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
