package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/vrsandeep/cropduster/internal/core"
	"github.com/vrsandeep/cropduster/internal/models"
	"github.com/vrsandeep/cropduster/internal/store"
	"gopkg.in/yaml.v3"
)

type sizeFile struct {
	SizeSets []sizeSetEntry `yaml:"size_sets"`
}

type sizeSetEntry struct {
	Name  string      `yaml:"name"`
	Slug  string      `yaml:"slug"`
	Sizes []sizeEntry `yaml:"sizes"`
}

type sizeEntry struct {
	Name        string  `yaml:"name"`
	Slug        string  `yaml:"slug"`
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	MinWidth    int     `yaml:"min_width"`
	MinHeight   int     `yaml:"min_height"`
	AspectRatio float64 `yaml:"aspect_ratio"`
}

var loadSizesCmd = &cobra.Command{
	Use:   "load-sizes <file.yml>",
	Short: "Create or replace size sets from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoadSizes,
}

func init() {
	rootCmd.AddCommand(loadSizesCmd)
}

func runLoadSizes(_ *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	sets, err := parseSizeSets(f)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	app, err := core.New()
	if err != nil {
		return err
	}
	defer app.Close()

	st := store.New(app.DB())
	for _, ss := range sets {
		saved, err := st.SaveSizeSet(ss)
		if err != nil {
			return err
		}
		log.Printf("Saved size set %s with %d sizes", saved.Slug, len(saved.Sizes))
	}
	return nil
}

// parseSizeSets decodes and validates a size set file.
func parseSizeSets(r io.Reader) ([]*models.SizeSet, error) {
	var file sizeFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("invalid size file: %w", err)
	}
	if len(file.SizeSets) == 0 {
		return nil, fmt.Errorf("no size sets defined")
	}

	seen := make(map[string]bool)
	sets := make([]*models.SizeSet, 0, len(file.SizeSets))
	for _, entry := range file.SizeSets {
		if seen[entry.Slug] {
			return nil, fmt.Errorf("duplicate size set slug %q", entry.Slug)
		}
		seen[entry.Slug] = true

		ss := &models.SizeSet{Name: entry.Name, Slug: entry.Slug}
		if ss.Name == "" {
			ss.Name = entry.Slug
		}
		for _, s := range entry.Sizes {
			name := s.Name
			if name == "" {
				name = s.Slug
			}
			ss.Sizes = append(ss.Sizes, &models.Size{
				Name:        name,
				Slug:        s.Slug,
				Width:       s.Width,
				Height:      s.Height,
				MinWidth:    s.MinWidth,
				MinHeight:   s.MinHeight,
				AspectRatio: s.AspectRatio,
			})
		}
		if err := ss.Validate(); err != nil {
			return nil, err
		}
		sets = append(sets, ss)
	}
	return sets, nil
}
