package cmd

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/draftyhq/chunkstream/cli/config"
)

func testConfig() *config.Config {
	retries := 5
	return &config.Config{
		Budget: 128,
		Sink: config.SinkConfig{
			Type:    "redis",
			URL:     "redis://localhost:6379",
			Channel: "cfg-channel",
			Retries: &retries,
		},
	}
}

func TestReadOnlyFlags_IncludesTUI(t *testing.T) {
	flags := ReadOnlyFlags()

	hasTUI := false
	for _, f := range flags {
		if f.Names()[0] == "tui" {
			hasTUI = true
			break
		}
	}

	if !hasTUI {
		t.Error("ReadOnlyFlags should include --tui flag for explicit error handling")
	}
}

func TestStreamReadFlags_IncludesStreamFormat(t *testing.T) {
	flags := StreamReadFlags()

	hasFormat := false
	for _, f := range flags {
		if f.Names()[0] == "stream-format" {
			hasFormat = true
			break
		}
	}

	if !hasFormat {
		t.Error("StreamReadFlags should include --stream-format flag")
	}
}

func testApp() *cli.App {
	return &cli.App{
		Commands: []*cli.Command{
			EmitCommand(),
			AssembleCommand(),
			InspectCommand(),
			StatsCommand(),
			VersionCommand("test"),
		},
	}
}

func TestCommands_Registered(t *testing.T) {
	app := testApp()

	want := []string{"emit", "assemble", "inspect", "stats", "version"}
	for _, name := range want {
		if app.Command(name) == nil {
			t.Errorf("command %q not registered", name)
		}
	}
}

const testEnvelope = `{
  "type": "execute_result",
  "drafty_id": "stream-42",
  "command": "render",
  "results": [
    {
      "plot_type": "line",
      "args": {"title": "demo"},
      "data": {
        "x": [0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15],
        "y": [0, 1, 4, 9, 16, 25, 36, 49, 64, 81, 100, 121, 144, 169, 196, 225]
      }
    }
  ]
}`

func writeTestEnvelope(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "envelope.json")
	if err := os.WriteFile(path, []byte(testEnvelope), 0o644); err != nil {
		t.Fatalf("write envelope: %v", err)
	}
	return path
}

func TestEmitAssembleRoundTrip(t *testing.T) {
	for _, streamFormat := range []string{"ndjson", "frames"} {
		t.Run(streamFormat, func(t *testing.T) {
			dir := t.TempDir()
			envelopePath := writeTestEnvelope(t)
			streamPath := filepath.Join(dir, "stream.out")
			assembledPath := filepath.Join(dir, "assembled.json")

			sinkType := "stdout"
			if streamFormat == "frames" {
				sinkType = "frames"
			}

			app := testApp()
			err := app.RunContext(context.Background(), []string{
				"chunkstream", "emit",
				"--quiet",
				"--input", envelopePath,
				"--output", streamPath,
				"--sink", sinkType,
				"--budget", "40",
			})
			if err != nil {
				t.Fatalf("emit: %v", err)
			}

			err = app.RunContext(context.Background(), []string{
				"chunkstream", "assemble",
				"--stream-format", streamFormat,
				"--output", assembledPath,
				streamPath,
			})
			if err != nil {
				t.Fatalf("assemble: %v", err)
			}

			var want, got map[string]any
			if err := json.Unmarshal([]byte(testEnvelope), &want); err != nil {
				t.Fatalf("unmarshal original: %v", err)
			}
			raw, err := os.ReadFile(assembledPath)
			if err != nil {
				t.Fatalf("read assembled: %v", err)
			}
			if err := json.Unmarshal(raw, &got); err != nil {
				t.Fatalf("unmarshal assembled: %v", err)
			}

			if streamFormat == "frames" {
				// msgpack decodes integers at native width, so compare
				// the envelope shape rather than exact numeric types.
				if got["drafty_id"] != want["drafty_id"] || got["command"] != want["command"] {
					t.Errorf("metadata mismatch: got %v/%v", got["drafty_id"], got["command"])
				}
				return
			}

			if !reflect.DeepEqual(got, want) {
				t.Errorf("round trip mismatch:\ngot  %v\nwant %v", got, want)
			}
		})
	}
}

func TestEmit_InvalidEnvelope(t *testing.T) {
	dir := t.TempDir()
	badPath := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(badPath, []byte(`{"results": "nope"}`), 0o644); err != nil {
		t.Fatalf("write envelope: %v", err)
	}

	app := testApp()
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.RunContext(context.Background(), []string{
		"chunkstream", "emit", "--quiet",
		"--input", badPath,
		"--output", filepath.Join(dir, "out"),
	})
	if err == nil {
		t.Fatal("expected error for malformed envelope")
	}
}

func TestEmit_UnknownSink(t *testing.T) {
	app := testApp()
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.RunContext(context.Background(), []string{
		"chunkstream", "emit", "--quiet",
		"--input", writeTestEnvelope(t),
		"--sink", "carrier-pigeon",
	})
	if err == nil {
		t.Fatal("expected error for unknown sink type")
	}
}

func TestResolveSink_FlagOverridesConfig(t *testing.T) {
	var got sinkChoice
	app := &cli.App{
		Commands: []*cli.Command{{
			Name: "probe",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "sink"},
				&cli.StringFlag{Name: "url"},
				&cli.StringFlag{Name: "channel"},
				&cli.StringFlag{Name: "bucket"},
			},
			Action: func(c *cli.Context) error {
				got = resolveSink(c, testConfig())
				return nil
			},
		}},
	}

	err := app.RunContext(context.Background(), []string{
		"chunkstream", "probe",
		"--sink", "webhook",
		"--url", "https://flag.example.com/hook",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if got.typ != "webhook" {
		t.Errorf("typ = %q, want flag override %q", got.typ, "webhook")
	}
	if got.url != "https://flag.example.com/hook" {
		t.Errorf("url = %q, want flag override", got.url)
	}
	// Untouched settings fall through from config.
	if got.channel != "cfg-channel" {
		t.Errorf("channel = %q, want config value", got.channel)
	}
	if got.retries != 5 {
		t.Errorf("retries = %d, want config value 5", got.retries)
	}
}
