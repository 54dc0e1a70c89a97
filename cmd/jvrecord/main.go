// SPDX-License-Identifier: MIT

// jvrecord is a headless capture client. It records a clip from a local
// audio source, runs it through the same processing chain the service
// expects, and uploads the result.
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamaisvu/jamaisvu/internal/capture"
	"github.com/jamaisvu/jamaisvu/internal/recording"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var (
	flagInput    string
	flagOutput   string
	flagRate     int
	flagChannels int
	flagPaced    bool
	flagDuration time.Duration

	flagServer string
	flagFile   string
	flagLat    float64
	flagLon    float64
	flagCoords bool
	flagSplit  bool
)

var rootCmd = &cobra.Command{
	Use:   "jvrecord",
	Short: "Capture and upload ambient recordings",
}

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Record a clip from an audio source file",
	RunE: func(cmd *cobra.Command, args []string) error {
		device, err := openDevice(flagInput)
		if err != nil {
			return err
		}

		session, err := capture.NewSession(device, capture.SessionConfig{
			MaxDuration: flagDuration,
			Chain:       capture.NewChain(device.Format()),
			Encoder:     capture.WAVEncoder{},
		})
		if err != nil {
			return fmt.Errorf("creating session: %w", err)
		}

		ctx := cmd.Context()
		if err := session.Start(ctx); err != nil {
			return fmt.Errorf("starting capture: %w", err)
		}
		blob, err := session.Blob(ctx)
		if err != nil {
			return fmt.Errorf("finalizing capture: %w", err)
		}

		if err := os.WriteFile(flagOutput, blob, 0o644); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		fmt.Printf("Wrote %d bytes to %s\n", len(blob), flagOutput)
		return nil
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a recorded clip to the service",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(flagFile)
		if err != nil {
			return fmt.Errorf("reading clip: %w", err)
		}
		flagCoords = cmd.Flags().Changed("lat") && cmd.Flags().Changed("lon")

		ctx := cmd.Context()
		var doc recording.Document
		if flagSplit {
			doc, err = uploadSplit(ctx, data)
		} else {
			doc, err = uploadSingle(ctx, data)
		}
		if err != nil {
			return err
		}

		fmt.Printf("Uploaded as %s", doc.Filename)
		if doc.Location.City != "" {
			fmt.Printf(" (%s)", doc.Location.City)
		}
		fmt.Println()
		return nil
	},
}

// openDevice builds a file-backed device. WAV input carries its own format;
// raw PCM input relies on the rate and channel flags.
func openDevice(path string) (capture.Device, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	format := capture.Format{SampleRate: flagRate, Channels: flagChannels}
	pcm := data
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		format, pcm, err = capture.DecodeWAV(data)
		if err != nil {
			return nil, fmt.Errorf("decoding wav: %w", err)
		}
	}
	return capture.NewFileDevice(bytes.NewReader(pcm), format, flagPaced), nil
}

// uploadSingle sends audio and coordinates in one request.
func uploadSingle(ctx context.Context, data []byte) (recording.Document, error) {
	body := map[string]any{
		"base64": base64.StdEncoding.EncodeToString(data),
	}
	if flagCoords {
		body["latitude"] = flagLat
		body["longitude"] = flagLon
	}

	var doc recording.Document
	if err := postJSON(ctx, flagServer+"/api/recordings", body, &doc); err != nil {
		return recording.Document{}, err
	}
	return doc, nil
}

// uploadSplit performs the two round trips: audio first, coordinates second.
// The second call is skipped when no coordinates were given.
func uploadSplit(ctx context.Context, data []byte) (recording.Document, error) {
	var doc recording.Document
	err := postJSON(ctx, flagServer+"/api/recordings", map[string]any{
		"base64": base64.StdEncoding.EncodeToString(data),
	}, &doc)
	if err != nil {
		return recording.Document{}, err
	}
	if !flagCoords {
		return doc, nil
	}

	body := map[string]any{
		"location": map[string]any{
			"coords": map[string]any{
				"latitude":  flagLat,
				"longitude": flagLon,
			},
		},
	}
	err = postJSON(ctx, flagServer+"/api/recordings/"+doc.Filename+"/metadata", body, &doc)
	if err != nil {
		return recording.Document{}, err
	}
	return doc, nil
}

func postJSON(ctx context.Context, url string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("server returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func init() {
	captureCmd.Flags().StringVar(&flagInput, "in", "", "input audio file (wav or raw pcm16le)")
	captureCmd.Flags().StringVar(&flagOutput, "out", "recording.wav", "output wav file")
	captureCmd.Flags().IntVar(&flagRate, "rate", 44100, "sample rate for raw pcm input")
	captureCmd.Flags().IntVar(&flagChannels, "channels", 1, "channel count for raw pcm input")
	captureCmd.Flags().BoolVar(&flagPaced, "paced", false, "emit chunks in real time instead of as fast as possible")
	captureCmd.Flags().DurationVar(&flagDuration, "duration", capture.MaxDuration, "recording ceiling")
	_ = captureCmd.MarkFlagRequired("in")

	uploadCmd.Flags().StringVar(&flagServer, "server", "http://localhost:8080", "service base URL")
	uploadCmd.Flags().StringVar(&flagFile, "file", "recording.wav", "clip to upload")
	uploadCmd.Flags().Float64Var(&flagLat, "lat", 0, "latitude")
	uploadCmd.Flags().Float64Var(&flagLon, "lon", 0, "longitude")
	uploadCmd.Flags().BoolVar(&flagSplit, "split", false, "upload audio and location in separate requests")

	rootCmd.AddCommand(captureCmd, uploadCmd)
}
