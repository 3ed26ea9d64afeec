package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tmm22/VoiceInk-sub003/pkg/audio/resampler"
	"github.com/tmm22/VoiceInk-sub003/pkg/audio/wav"
	"github.com/tmm22/VoiceInk-sub003/pkg/cli"
)

// TranscribeRequest is the request-file form of a transcription.
type TranscribeRequest struct {
	// Audio is the path to the input WAV file.
	Audio string `yaml:"audio" json:"audio"`

	// Model selects a registered model (default: config default_model).
	Model string `yaml:"model,omitempty" json:"model,omitempty"`

	// Language is the recognition language hint.
	Language string `yaml:"language,omitempty" json:"language,omitempty"`

	// SampleRate is the source sample rate when not 16000.
	SampleRate int `yaml:"sample_rate,omitempty" json:"sample_rate,omitempty"`

	// Stereo marks two-channel sources that need downmixing.
	Stereo bool `yaml:"stereo,omitempty" json:"stereo,omitempty"`

	// NoVAD disables voice activity segmentation for this request.
	NoVAD bool `yaml:"no_vad,omitempty" json:"no_vad,omitempty"`
}

// TranscribeResult is what the command prints.
type TranscribeResult struct {
	Text     string  `yaml:"text" json:"text"`
	Model    string  `yaml:"model" json:"model"`
	Audio    string  `yaml:"audio" json:"audio"`
	Duration float64 `yaml:"duration_seconds" json:"duration_seconds"`
	Elapsed  float64 `yaml:"elapsed_seconds" json:"elapsed_seconds"`
}

var transcribeCmd = &cobra.Command{
	Use:   "transcribe [audio.wav]",
	Short: "Transcribe a WAV file",
	Long: `Transcribe a WAV file with a local recognition model.

Input is PCM16 WAV. 16 kHz mono sources are consumed directly; anything
else is converted with --sample-rate / --stereo (or the matching request
file fields).

Example request file (transcribe.yaml):
  audio: recording.wav
  model: sensevoice-small
  language: en
  sample_rate: 48000
  stereo: true

Examples:
  voiceink transcribe recording.wav
  voiceink transcribe recording.wav -m parakeet-ctc --language en
  voiceink transcribe -f transcribe.yaml --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := TranscribeRequest{}
		if inputFile != "" {
			if err := cli.LoadRequest(inputFile, &req); err != nil {
				return err
			}
		}
		if len(args) > 0 {
			req.Audio = args[0]
		}
		if req.Audio == "" {
			return fmt.Errorf("audio file is required (argument or request file)")
		}
		if modelName != "" {
			req.Model = modelName
		}
		if lang, _ := cmd.Flags().GetString("language"); lang != "" {
			req.Language = lang
		}
		if rate, _ := cmd.Flags().GetInt("sample-rate"); rate != 0 {
			req.SampleRate = rate
		}
		if stereo, _ := cmd.Flags().GetBool("stereo"); stereo {
			req.Stereo = true
		}
		if noVAD, _ := cmd.Flags().GetBool("no-vad"); noVAD {
			req.NoVAD = true
		}

		return runTranscribe(cmd, req)
	},
}

func runTranscribe(cmd *cobra.Command, req TranscribeRequest) error {
	cfg := getConfig()
	logger := newLogger()

	model, err := resolveModel(cfg, req.Model, req.Language)
	if err != nil {
		return err
	}

	rec, err := newRecognizer(cfg, logger, req.NoVAD)
	if err != nil {
		return err
	}
	defer rec.Cleanup()

	samples, err := loadSamples(req)
	if err != nil {
		return err
	}
	audioDur := float64(len(samples)) / wav.SampleRate
	logger.Debug("decoded audio", "path", req.Audio, "samples", len(samples), "seconds", audioDur)

	start := time.Now()
	text, err := rec.TranscribeSamples(cmd.Context(), samples, model)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	logger.Debug("transcription done", "model", model.Key,
		"elapsed", cli.FormatDuration(int(elapsed.Milliseconds())))

	result := TranscribeResult{
		Text:     text,
		Model:    model.Key,
		Audio:    req.Audio,
		Duration: audioDur,
		Elapsed:  elapsed.Seconds(),
	}

	format := cli.FormatYAML
	if outputJSON {
		format = cli.FormatJSON
	}
	if outputFile == "" && !outputJSON {
		// Bare terminal use prints just the text.
		fmt.Println(text)
		return nil
	}
	return cli.Output(result, cli.OutputOptions{Format: format, File: outputFile})
}

// loadSamples decodes the input file, converting through the resampler when
// the source is not already 16 kHz mono.
func loadSamples(req TranscribeRequest) ([]float32, error) {
	needsConvert := (req.SampleRate != 0 && req.SampleRate != wav.SampleRate) || req.Stereo
	if !needsConvert {
		return wav.DecodeFile(req.Audio)
	}

	f, err := os.Open(req.Audio)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	// Skip the WAV header, then resample the raw PCM body.
	header := make([]byte, wav.HeaderSize)
	if _, err := io.ReadFull(f, header); err != nil {
		return nil, fmt.Errorf("read audio header: %w", err)
	}

	srcRate := req.SampleRate
	if srcRate == 0 {
		srcRate = wav.SampleRate
	}
	r, err := resampler.To16kMono(f, resampler.Format{SampleRate: srcRate, Stereo: req.Stereo})
	if err != nil {
		return nil, fmt.Errorf("resampler: %w", err)
	}
	defer r.Close()

	return wav.ReadRaw(r)
}

func init() {
	transcribeCmd.Flags().String("language", "", "language hint (zh, en, yue, ja, ko)")
	transcribeCmd.Flags().Int("sample-rate", 0, "source sample rate when not 16000")
	transcribeCmd.Flags().Bool("stereo", false, "source is stereo (downmix to mono)")
	transcribeCmd.Flags().Bool("no-vad", false, "disable voice activity segmentation")
}
