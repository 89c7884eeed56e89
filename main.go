package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/soocke/screenrec/app"
	"github.com/soocke/screenrec/config"
	"github.com/soocke/screenrec/domain/audio"
	"github.com/soocke/screenrec/domain/capture"
	"github.com/soocke/screenrec/domain/recorder"
)

var (
	version    = "0.1.0"
	cfgFile    string
	debugFlag  bool
	ffmpegPath string
	fpsFlag    float64
	outputFile string

	regionFlag   string
	durationFlag time.Duration

	testSeconds float64
	testOut     string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "screenrec",
	Short:         "Record a screen region with system audio",
	Long:          `screenrec records a rectangular screen region together with the default speaker's loopback audio and muxes both into an MP4 whose frame rate matches the capture rate actually achieved.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return recordGUI(cmd.Context())
	},
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a session (window selection unless --region is given)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if regionFlag == "" {
			return recordGUI(cmd.Context())
		}
		region, err := capture.ParseRegion(regionFlag)
		if err != nil {
			return err
		}
		return recordHeadless(cmd.Context(), region, durationFlag)
	},
}

var muxCmd = &cobra.Command{
	Use:   "mux",
	Short: "Mux leftover intermediate files into the output video",
	RunE: func(cmd *cobra.Command, args []string) error {
		m := app.NewMuxer(cfg, app.Deps{}, logger)
		res, err := recorder.Finish(cmd.Context(), m, app.Artifacts(cfg), cfg.OutputFile)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s (%d frames at %.3f fps)\n", res.Output, res.Frames, res.Rate)
		return nil
	},
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List audio devices and the resolved loopback source",
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := audio.NewMalgoBackend(logger)
		if err != nil {
			return err
		}
		defer backend.Close()
		speaker, err := backend.DefaultOutputName()
		if err != nil {
			return err
		}
		candidates, err := backend.Candidates()
		if err != nil {
			return err
		}
		fmt.Printf("Default output: %s\n", speaker)
		dev, ok := audio.ResolveLoopback(speaker, candidates)
		for _, c := range candidates {
			mark := " "
			if ok && c.Name() == dev.Name() {
				mark = "*"
			}
			fmt.Printf(" %s %s\n", mark, c.Name())
		}
		if !ok {
			fmt.Println("No loopback source matches the default output.")
		}
		return nil
	},
}

var audioTestCmd = &cobra.Command{
	Use:   "audio-test",
	Short: "Record a few seconds of loopback audio to a WAV file",
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := audio.NewMalgoBackend(logger)
		if err != nil {
			return err
		}
		defer backend.Close()
		dev, err := audio.Loopback(backend)
		if err != nil {
			return err
		}
		f := audio.Format{SampleRate: cfg.SampleRate, Channels: cfg.Channels}
		frames := f.FramesFor(time.Duration(testSeconds * float64(time.Second)))
		fmt.Printf("Recording %.1fs from %s\n", testSeconds, dev.Name())
		block, err := audio.Record(dev, f, frames)
		if err != nil {
			return err
		}
		if err := (audio.WAVSink{}).Write(testOut, f, block.Samples); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", testOut)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("screenrec v%s\n", version)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is screenrec.yaml in the working or user config directory)")
	pf.BoolVar(&debugFlag, "debug", false, "debug logging and periodic load stats")
	pf.StringVar(&ffmpegPath, "ffmpeg", "", "ffmpeg executable")
	pf.Float64Var(&fpsFlag, "fps", 0, "target capture rate")
	pf.StringVarP(&outputFile, "output", "o", "", "output video file")

	recordCmd.Flags().StringVar(&regionFlag, "region", "", "record left,top,width,height without a window")
	recordCmd.Flags().DurationVar(&durationFlag, "duration", 0, "stop a --region recording after this long (0 waits for Ctrl+C)")

	audioTestCmd.Flags().Float64Var(&testSeconds, "seconds", 5, "length of the test recording")
	audioTestCmd.Flags().StringVar(&testOut, "out", "audio-test.wav", "WAV file to write")

	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(muxCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(audioTestCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if hint := app.Hint(err); hint != "" {
			fmt.Fprintln(os.Stderr, "Hint:", hint)
		}
		stop()
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("debug") {
		cfg.Debug = debugFlag
	}
	if flags.Changed("ffmpeg") {
		cfg.FFmpegPath = ffmpegPath
	}
	if flags.Changed("fps") {
		cfg.FPS = fpsFlag
	}
	if flags.Changed("output") {
		cfg.OutputFile = outputFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger = NewLogger(os.Stderr, level)
	return nil
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath()
}

func recordGUI(ctx context.Context) error {
	backend, err := audio.NewMalgoBackend(logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	deps := app.Deps{Backend: backend}
	c := app.BuildContainer(ctx, cfg, configPath(), deps, logger)
	app.NewApp(c).Run()

	_, res, err := c.Controller.Finalize(context.WithoutCancel(ctx))
	if errors.Is(err, app.ErrNoSession) {
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", res.Output)
	return nil
}

func recordHeadless(ctx context.Context, region capture.Region, d time.Duration) error {
	backend, err := audio.NewMalgoBackend(logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	if d <= 0 {
		fmt.Println("Recording, press Ctrl+C to stop.")
	}
	report, res, err := app.Record(ctx, cfg, region, d, app.Deps{Backend: backend}, logger)
	if err != nil {
		return err
	}
	fmt.Printf("Recorded %s in session %s\n", report.Duration().Round(time.Millisecond), report.ID)
	fmt.Printf("Wrote %s (%d frames at %.3f fps)\n", res.Output, res.Frames, res.Rate)
	return nil
}
