package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/tmm22/VoiceInk-sub003/pkg/asr"
	"github.com/tmm22/VoiceInk-sub003/pkg/asr/ort"
	"github.com/tmm22/VoiceInk-sub003/pkg/cli"
	"github.com/tmm22/VoiceInk-sub003/pkg/vad"
)

// newLogger builds the CLI logger, honoring --verbose.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// familyFor maps a configured family name to its strategy.
func familyFor(mc *cli.ModelConfig, language string, skipTextNorm bool) (asr.Family, error) {
	switch mc.Family {
	case "fastconformer":
		return asr.FastConformer{}, nil
	case "sensevoice":
		return asr.SenseVoice{Language: language, SkipTextNorm: skipTextNorm}, nil
	case "parakeet":
		return asr.Parakeet{}, nil
	default:
		return nil, fmt.Errorf("model %q: unknown family %q", mc.Name, mc.Family)
	}
}

// resolveModel turns a model name (or the configured default) into a ready
// asr.Model.
func resolveModel(cfg *cli.Config, name, language string) (asr.Model, error) {
	mc, err := cfg.ResolveModel(name)
	if err != nil {
		return asr.Model{}, err
	}
	if language == "" {
		language = cfg.Language
	}
	family, err := familyFor(mc, language, cfg.SkipTextNorm)
	if err != nil {
		return asr.Model{}, err
	}
	return asr.Model{
		Key:    mc.Name,
		Dir:    mc.ResolvedDir(cfg.ResolvedModelsDir()),
		Family: family,
	}, nil
}

// newRecognizer builds the transcription pipeline from configuration.
func newRecognizer(cfg *cli.Config, logger *slog.Logger, disableVAD bool) (*asr.Recognizer, error) {
	opts := []asr.Option{asr.WithLogger(logger)}

	if cfg.VAD.Enabled && !disableVAD {
		seg, err := vad.NewWebRTC(vad.WithMode(cfg.VAD.Mode))
		if err != nil {
			// Segmentation is an optimization; fall back to the
			// energy detector rather than refusing to transcribe.
			logger.Warn("webrtc vad unavailable, using energy detector", "error", err)
			opts = append(opts, asr.WithSegmenter(vad.Energy{}))
		} else {
			opts = append(opts, asr.WithSegmenter(seg))
		}
		if cfg.VAD.ThresholdSeconds > 0 {
			opts = append(opts, asr.WithSegmentThreshold(time.Duration(cfg.VAD.ThresholdSeconds)*time.Second))
		}
	}

	return asr.NewRecognizer(ort.Factory{}, opts...), nil
}

// dirSize sums the file sizes directly inside a model directory.
func dirSize(dir string) int64 {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	var total int64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if info, err := os.Stat(filepath.Join(dir, e.Name())); err == nil {
			total += info.Size()
		}
	}
	return total
}
