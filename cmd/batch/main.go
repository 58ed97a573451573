package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/decartgilad/decart-video-processor/internal/batch"
	"github.com/decartgilad/decart-video-processor/internal/domain"
	"github.com/decartgilad/decart-video-processor/internal/infra"
	"github.com/decartgilad/decart-video-processor/internal/providers/decart"
	"github.com/decartgilad/decart-video-processor/internal/providers/video"
	"github.com/decartgilad/decart-video-processor/internal/storage"
)

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

func main() {
	var (
		videoFlag       string
		promptsFlag     string
		promptFlag      string
		orientationFlag string
	)

	flag.StringVar(&videoFlag, "video", "", "source video file (mp4, avi, mov, mkv, webm)")
	flag.StringVar(&promptsFlag, "prompts", "", "CSV file with one prompt per row (first column)")
	flag.StringVar(&promptFlag, "prompt", "", "single prompt, used when -prompts is not given")
	flag.StringVar(&orientationFlag, "orientation", "landscape", "landscape or portrait")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		exitWithError(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	payload, err := loadVideo(videoFlag)
	if err != nil {
		exitWithError(err)
	}
	orientation, err := domain.ParseOrientation(orientationFlag)
	if err != nil {
		exitWithError(err)
	}

	var prompts []string
	single := strings.TrimSpace(promptsFlag) == ""
	if single {
		if strings.TrimSpace(promptFlag) == "" {
			exitWithError(errors.New("either -prompts or -prompt must be provided"))
		}
		prompts = []string{promptFlag}
	} else {
		f, err := os.Open(promptsFlag)
		if err != nil {
			exitWithError(fmt.Errorf("open prompt table: %w", err))
		}
		prompts, err = batch.ParsePrompts(f)
		f.Close()
		if err != nil {
			exitWithError(err)
		}
	}

	archiveStore, err := storage.NewFileStore(cfg.OutputDir)
	if err != nil {
		exitWithError(err)
	}
	previewStore, err := storage.NewFileStore(cfg.PreviewDir)
	if err != nil {
		exitWithError(err)
	}
	writer := storage.NewArtifactWriter(storage.NewArchive(archiveStore), previewStore, cfg.PreviewURLPrefix, &logger)

	client, err := decart.NewClient(decart.Options{
		APIKey:         cfg.DecartAPIKey,
		Endpoint:       cfg.DecartEndpoint(),
		RequestTimeout: cfg.DecartTimeout,
		Logger:         &logger,
	})
	if err != nil {
		exitWithError(err)
	}
	runner := batch.NewRunner(video.NewDecartTransformer(client), writer, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	req := batch.Request{Video: payload, Orientation: orientation, RequestID: "cli"}
	var outcomes []domain.Outcome
	if single {
		artifact, err := runner.RunSingle(ctx, req, promptFlag)
		outcomes = []domain.Outcome{{Prompt: strings.TrimSpace(promptFlag), Artifact: artifact, Err: err}}
	} else {
		outcomes = runner.RunBatch(ctx, req, prompts)
	}

	fmt.Println(renderReport(outcomes, orientation.Dimensions()))
	if _, failed := batch.Summarize(outcomes); failed > 0 {
		os.Exit(1)
	}
}

func loadVideo(path string) (domain.VideoPayload, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return domain.VideoPayload{}, domain.ErrMissingVideo
	}
	if !domain.AllowedVideoFile(path) {
		return domain.VideoPayload{}, domain.ErrInvalidFileType
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.VideoPayload{}, fmt.Errorf("read video: %w", err)
	}
	if len(data) == 0 {
		return domain.VideoPayload{}, domain.ErrEmptyVideo
	}
	return domain.NewVideoPayload(data, "video/mp4", filepath.Base(path)), nil
}

func renderReport(outcomes []domain.Outcome, dims domain.Dimensions) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Results (%dx%d)", dims.Width, dims.Height)))
	b.WriteString("\n")
	for i, o := range outcomes {
		prefix := dimStyle.Render(fmt.Sprintf("%3d.", i+1))
		if o.Succeeded() {
			fmt.Fprintf(&b, "%s %s %s %s\n", prefix, okStyle.Render("OK  "), promptStyle.Render(o.Prompt),
				dimStyle.Render("-> "+o.Artifact.ArchiveName+" ("+o.Artifact.PreviewURL+")"))
			continue
		}
		fmt.Fprintf(&b, "%s %s %s %s\n", prefix, failStyle.Render("FAIL"), promptStyle.Render(o.Prompt),
			dimStyle.Render(o.ErrorMessage()))
	}
	succeeded, failed := batch.Summarize(outcomes)
	fmt.Fprintf(&b, "%s succeeded, %s failed", okStyle.Render(fmt.Sprint(succeeded)), failStyle.Render(fmt.Sprint(failed)))
	return b.String()
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, failStyle.Render("error:"), err)
	os.Exit(1)
}
