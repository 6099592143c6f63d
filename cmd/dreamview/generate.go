package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-dream/engine/description"
	"github.com/Carmen-Shannon/oxy-dream/engine/generator"
	"github.com/spf13/cobra"
)

// moodFlags are the generator inputs shared by generate and view.
type moodFlags struct {
	narrative string
	mood      string
	seed      int64
	style     string
}

func (m *moodFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&m.narrative, "narrative", "", "narrative whose keywords pick scene features")
	f.StringVar(&m.mood, "mood", "0,0,0.5,0", "valence,arousal,warmth,nostalgia")
	f.Int64Var(&m.seed, "seed", 0, "random seed; unset picks one")
	f.StringVar(&m.style, "style", generator.StyleStylized, "stylized, realistic or lowpoly")
}

// request builds the generator request. The seed is only fixed when the flag was given.
func (m *moodFlags) request(cmd *cobra.Command) (generator.Request, error) {
	mood, err := parseMood(m.mood)
	if err != nil {
		return generator.Request{}, err
	}
	req := generator.Request{Narrative: m.narrative, Mood: mood, Style: m.style}
	if cmd.Flags().Changed("seed") {
		seed := m.seed
		req.Seed = &seed
	}
	return req, nil
}

// parseMood reads "valence,arousal,warmth,nostalgia".
func parseMood(s string) (generator.Mood, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return generator.Mood{}, fmt.Errorf("mood %q: want valence,arousal,warmth,nostalgia", s)
	}
	var v [4]float32
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return generator.Mood{}, fmt.Errorf("mood %q: %w", s, err)
		}
		v[i] = float32(f)
	}
	return generator.Mood{Valence: v[0], Arousal: v[1], Warmth: v[2], Nostalgia: v[3]}, nil
}

func newGenerateCmd(a *app) *cobra.Command {
	var (
		mf     moodFlags
		output string
		format string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a scene description from a mood and a narrative",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := mf.request(cmd)
			if err != nil {
				return err
			}
			desc, err := generator.Generate(req)
			if err != nil {
				a.status.fail("%v", err)
				return err
			}

			f := description.FormatYAML
			switch {
			case format == "json":
				f = description.FormatJSON
			case format == "" && output != "":
				if description.FormatFromPath(output) == description.FormatJSON {
					f = description.FormatJSON
				}
			}
			data, err := description.Encode(desc, f)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = a.stdout.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				a.status.fail("%v", err)
				return err
			}
			a.status.ok("wrote %q with %d objects to %s", desc.Title, len(desc.Objects), output)
			return nil
		},
	}
	mf.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file; - or empty writes to stdout")
	cmd.Flags().StringVar(&format, "format", "", "yaml or json; defaults to the output extension, else yaml")
	return cmd
}
