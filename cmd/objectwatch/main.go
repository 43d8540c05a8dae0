// objectwatch - webcam object detection
//
// Asks which object class to look for, then shows the webcam feed with every
// confident detection of that class boxed and labelled.
// Press q in the window to pick another class, Esc to quit.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/teslashibe/go-objectwatch/internal/config"
	"github.com/teslashibe/go-objectwatch/internal/log"
	"github.com/teslashibe/go-objectwatch/pkg/camera"
	"github.com/teslashibe/go-objectwatch/pkg/catalog"
	"github.com/teslashibe/go-objectwatch/pkg/console"
	"github.com/teslashibe/go-objectwatch/pkg/debug"
	"github.com/teslashibe/go-objectwatch/pkg/detection/yolo"
	"github.com/teslashibe/go-objectwatch/pkg/metrics"
	"github.com/teslashibe/go-objectwatch/pkg/session"
)

const (
	flagModel      = "model"
	flagLogLevel   = "log-level"
	flagResolution = "resolution"
	flagDebug      = "debug"
	flagPlain      = "plain"
)

// OpenCV highgui calls must stay on the main OS thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	// Handle signals
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	defaults := config.Default()
	app := &cli.App{
		Name:  "objectwatch",
		Usage: "detect and label objects in the webcam feed",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagModel,
				Usage:   "path to the YOLOv8 ONNX model",
				Value:   config.DefaultModelPath,
				EnvVars: []string{config.EnvModel},
			},
			&cli.StringFlag{
				Name:    flagLogLevel,
				Usage:   "log level (debug, info, warn, error)",
				Value:   defaults.LogLevel,
				EnvVars: []string{config.EnvLogLevel},
			},
			&cli.StringFlag{
				Name:    flagResolution,
				Usage:   fmt.Sprintf("capture preset %v", camera.PresetNames()),
				Value:   config.DefaultResolution,
				EnvVars: []string{config.EnvResolution},
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable verbose debug output",
			},
			&cli.BoolFlag{
				Name:  flagPlain,
				Usage: "read the class name as a plain line even on a terminal",
			},
		},
		Action: func(c *cli.Context) error {
			return run(c.Context, config.Config{
				ModelPath:  c.String(flagModel),
				LogLevel:   c.String(flagLogLevel),
				Resolution: c.String(flagResolution),
				Debug:      c.Bool(flagDebug),
				Plain:      c.Bool(flagPlain),
			})
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Error("objectwatch failed", "error", err)
		cancel()
		os.Exit(1)
	}
	cancel()
}

func run(ctx context.Context, cfg config.Config) (err error) {
	if err := cfg.Validate(camera.PresetNames()); err != nil {
		return err
	}

	level := cfg.LogLevel
	if cfg.Debug {
		level = "debug"
		debug.Enabled = true
	}
	log.Init(level)

	camCfg := camera.GetPreset(cfg.Resolution)
	if problems := camCfg.Validate(); len(problems) > 0 {
		return fmt.Errorf("camera config: %v", problems)
	}

	cat := catalog.Default()

	yoloCfg := yolo.DefaultConfig()
	yoloCfg.ModelPath = cfg.ModelPath
	detector, err := yolo.New(yoloCfg, cat)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, detector.Close()) }()

	log.Info("objectwatch starting",
		"model", cfg.ModelPath,
		"resolution", cfg.Resolution,
		"classes", cat.Len())

	sessCfg := session.DefaultConfig()
	sessCfg.MaxDroppedFrames = camCfg.MaxDroppedFrames

	runner, err := session.New(sessCfg, session.Deps{
		Catalog:     cat,
		Detector:    detector,
		OpenCamera:  camera.Opener(*camCfg),
		OpenDisplay: camera.WindowOpener(),
		Prompter:    console.New(cat.Names(), cfg.Plain),
		Metrics:     metrics.New(nil),
	})
	if err != nil {
		return err
	}

	err = runner.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
