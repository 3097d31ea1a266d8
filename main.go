// Tomato ripeness and disease scanner: web UI plus a batch CLI over the same
// dual-model analysis pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/makoyyylouie/tomato-ai/common"
	"github.com/makoyyylouie/tomato-ai/config"
	"github.com/makoyyylouie/tomato-ai/detect"
	"github.com/makoyyylouie/tomato-ai/images"
	"github.com/makoyyylouie/tomato-ai/overlay"
	"github.com/makoyyylouie/tomato-ai/pipeline"
	"github.com/makoyyylouie/tomato-ai/server"
	"github.com/makoyyylouie/tomato-ai/store"
	"github.com/makoyyylouie/tomato-ai/util"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	settings, err := config.Load()
	if err != nil {
		logger.Error("failed to load settings", "error", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:], settings, logger)
	case "batch":
		err = runBatch(os.Args[2:], settings, logger)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: tomato-ai <serve|batch> [flags]")
}

// buildOrchestrator loads whichever models are configured. A model that
// fails to load is logged and skipped; the pipeline degrades instead of the
// process dying.
func buildOrchestrator(settings *config.Settings, logger *slog.Logger) *pipeline.Orchestrator {
	var fruit, leaf detect.Detector
	var gatekeeper detect.Classifier

	if path := settings.Models.Fruit; path != "" {
		d, err := detect.NewONNXDetector("fruit_expert", detect.FruitModelConfig(path), common.SourceFruit, logger)
		if err != nil {
			logger.Warn("fruit model unavailable", "path", path, "error", err)
		} else {
			fruit = d
		}
	}
	if path := settings.Models.Leaf; path != "" {
		d, err := detect.NewONNXDetector("leaf_expert", detect.LeafModelConfig(path), common.SourceLeaf, logger)
		if err != nil {
			logger.Warn("leaf model unavailable", "path", path, "error", err)
		} else {
			leaf = d
		}
	}
	if path := settings.Models.Gatekeeper; path != "" {
		c, err := detect.NewONNXClassifier("gatekeeper", detect.GatekeeperModelConfig(path), logger)
		if err != nil {
			logger.Warn("gatekeeper model unavailable", "path", path, "error", err)
		} else {
			gatekeeper = c
		}
	}

	return pipeline.New(fruit, leaf, gatekeeper, logger)
}

func runServe(args []string, settings *config.Settings, logger *slog.Logger) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	host := fs.String("host", settings.Server.Host, "listen address")
	port := fs.Int("port", settings.Server.Port, "listen port")
	if err := fs.Parse(args); err != nil {
		return err
	}

	orchestrator := buildOrchestrator(settings, logger)
	if !orchestrator.Ready() {
		logger.Warn("no detection models loaded; analyze requests will be rejected")
	}

	accounts := store.NewAccountStore(settings.Storage.UsersFile)
	history, err := store.NewHistoryStore(settings.Storage.HistoryFile, settings.Storage.ScansDir)
	if err != nil {
		return err
	}

	srv, err := server.New(accounts, history, orchestrator, settings.Server.SessionSecret, settings.Storage.ScansDir, logger)
	if err != nil {
		return err
	}
	return srv.Start(fmt.Sprintf("%s:%d", *host, *port))
}

func runBatch(args []string, settings *config.Settings, logger *slog.Logger) error {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	dir := fs.String("dir", ".", "directory of images to analyze")
	mode := fs.String("mode", string(pipeline.ModeAuto), "analysis mode")
	out := fs.String("out", "", "directory for annotated copies (empty disables)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out != "" {
		if err := os.MkdirAll(*out, 0o755); err != nil {
			return err
		}
	}

	orchestrator := buildOrchestrator(settings, logger)
	if !orchestrator.Ready() {
		return fmt.Errorf("no detection models loaded")
	}

	paths, err := util.ListImages(*dir)
	if err != nil {
		return err
	}
	logger.Info("batch analysis starting", "dir", *dir, "images", len(paths))

	ctx := context.Background()
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Error("skipping unreadable file", "path", path, "error", err)
			continue
		}
		// The batch path keeps the stricter legacy threshold.
		result, err := orchestrator.Analyze(ctx, data, pipeline.Mode(*mode), detect.ThresholdStrict)
		if err != nil {
			logger.Error("analysis failed", "path", path, "error", err)
			continue
		}
		if !result.Detected {
			fmt.Printf("%s: nothing detected\n", path)
			continue
		}
		if *out != "" {
			if err := writeAnnotated(*out, path, data, result); err != nil {
				logger.Error("failed to write annotated copy", "path", path, "error", err)
			}
		}
		diseases := make([]string, len(result.Diseases))
		for i, d := range result.Diseases {
			diseases[i] = d.Name
		}
		fmt.Printf("%s: %s ripeness=%s confidence=%.2f diseases=[%s]\n",
			path, result.HealthStatus, result.Ripeness, result.MaxConfidence, strings.Join(diseases, ", "))
	}
	return nil
}

// writeAnnotated saves a boxed copy of a batch image. The batch output keeps
// the higher generic drawing threshold rather than the interactive one.
func writeAnnotated(outDir, srcPath string, data []byte, result *pipeline.Result) error {
	img, _, err := images.Decode(data)
	if err != nil {
		return err
	}
	boxes := make([]common.BoundingBox, 0, len(result.FruitDetections)+len(result.LeafDetections))
	boxes = append(boxes, result.FruitDetections...)
	boxes = append(boxes, result.LeafDetections...)
	annotated := overlay.DrawDetections(img, boxes, detect.ThresholdOverlayGeneric)

	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	return images.SaveJPEG(filepath.Join(outDir, base+"_annotated.jpg"), annotated)
}
