package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/cjeanneret/DoorGo/internal/command"
	"github.com/cjeanneret/DoorGo/internal/config"
	"github.com/cjeanneret/DoorGo/internal/debug"
	"github.com/cjeanneret/DoorGo/internal/hw/gpio"
	"github.com/cjeanneret/DoorGo/internal/hw/stepper"
	"github.com/cjeanneret/DoorGo/internal/logic/motion"
	"github.com/cjeanneret/DoorGo/internal/logic/sequencer"
	"github.com/cjeanneret/DoorGo/internal/web"
)

func main() {
	// CLI flags
	webPort := &webPortFlag{defaultPort: 8080}
	flag.Var(webPort, "web", "start web server on port; -web= for default 8080, -web 8980 for custom port")
	cfgPath := flag.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	mock := flag.Bool("mock", false, "mock mode: mock GPIO, commands read from stdin")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	if err := config.ValidateConfigPath(*cfgPath); err != nil {
		log.Fatalf("invalid config path: %v", err)
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	// Initialize debug system
	debug.Init(cfg.Defaults.DebugLevel)
	debug.Section("Initialization")
	debug.Value("Config path", *cfgPath)
	debug.Value("Debug level", cfg.Defaults.DebugLevel)

	// Initialize GPIO driver
	useMock := cfg.Defaults.MockGPIO || *mock
	debug.Value("Mock GPIO", useMock)
	debug.Step(1, "Initializing GPIO driver")
	gpioDriver, err := gpio.NewDriver(useMock)
	if err != nil {
		log.Fatalf("init GPIO failed: %v", err)
	}
	defer func() {
		if err := gpioDriver.Close(); err != nil {
			log.Printf("closing GPIO driver failed: %v", err)
		}
	}()

	// Initialize the driver stage: step/dir pulser and enable gate
	debug.Step(2, "Initializing stepper driver")
	pulser := stepper.NewPulser(gpioDriver, stepper.Config{
		StepPin: cfg.Motor.StepPin,
		DirPin:  cfg.Motor.DirPin,
	})
	gate := stepper.NewGate(gpioDriver, cfg.Motor.EnablePin)
	debug.PrintStruct("Motor config", cfg.Motor)

	// Motion profile executor
	debug.Step(3, "Initializing motion profile executor")
	executor := motion.New(pulser, motion.Config{
		MaxSpeed:     cfg.Motion.MaxSpeedStepsPerS,
		Acceleration: cfg.Motion.AccelerationStepsPerS,
	}, time.Now)
	debug.PrintStruct("Motion config", cfg.Motion)

	// Command sources feed one shared queue
	debug.Step(4, "Initializing command sources")
	queue := command.NewQueue(16)

	var statusPort io.Writer
	if *mock || cfg.Serial.Device == "" {
		debug.Info("Reading commands from stdin")
		go func() {
			if err := command.ReadLines(os.Stdin, queue); err != nil {
				debug.Error(fmt.Errorf("stdin reader: %w", err))
			}
		}()
	} else {
		port, err := command.OpenSerial(command.SerialConfig{
			Device:      cfg.Serial.Device,
			Baud:        cfg.Serial.Baud,
			ReadTimeout: cfg.SerialReadTimeout(),
		})
		if err != nil {
			log.Fatalf("open serial link failed: %v", err)
		}
		defer port.Close()
		statusPort = port
		go func() {
			if err := command.ReadLines(port, queue); err != nil {
				debug.Error(fmt.Errorf("serial reader: %w", err))
			}
		}()
	}

	// Optional web surface
	var broadcaster *web.StatusBroadcaster
	if port := webPort.port(); port > 0 {
		broadcaster = web.NewStatusBroadcaster()
		debug.SetOutput(io.MultiWriter(os.Stdout, web.BroadcastWriter(broadcaster)))

		srv := web.NewServer(fmt.Sprintf(":%d", port), broadcaster, queue.Push, web.MotionInfo{
			StepCount:    cfg.Motion.StepCount,
			DwellMs:      cfg.Motion.DwellMs,
			MaxSpeed:     cfg.Motion.MaxSpeedStepsPerS,
			Acceleration: cfg.Motion.AccelerationStepsPerS,
		})
		go func() {
			if err := srv.Run(ctx); err != nil {
				log.Printf("web server: %v", err)
				cancel()
			}
		}()
	}

	// Status lines go to the local log, back over the serial link (the
	// host-side client reads them as responses), and to SSE clients.
	report := sequencer.ReporterFunc(func(line string) {
		log.Printf("%s", line)
		if statusPort != nil {
			fmt.Fprintf(statusPort, "%s\r\n", line)
		}
		if broadcaster != nil {
			broadcaster.BroadcastMsg(line)
		}
	})

	seq := sequencer.New(sequencer.Config{
		StepCount: cfg.Motion.StepCount,
		Dwell:     cfg.Dwell(),
	}, queue, executor, gate, report, time.Now)

	debug.Section("Controller Ready")
	seq.Banner()

	if err := seq.Run(ctx, cfg.PollInterval()); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("sequencer: %v", err)
	}
	debug.Info("Shutdown complete")
}

// webPortFlag implements flag.Value for -web: 0 = disabled, -web= or -web 8080 → 8080, -web 8980 → 8980.
type webPortFlag struct {
	val         int
	defaultPort int
}

func (w *webPortFlag) String() string {
	if w.val == 0 {
		return "0"
	}
	return strconv.Itoa(w.val)
}

func (w *webPortFlag) Set(s string) error {
	if s == "" {
		w.val = w.defaultPort
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v <= 0 || v > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", v)
	}
	w.val = v
	return nil
}

func (w *webPortFlag) port() int { return w.val }
