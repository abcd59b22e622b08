package main

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yourusername/odds-apex/internal/engine"
	"github.com/yourusername/odds-apex/internal/scoring"
)

// openInput opens path for reading; "-" is standard input.
func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

func decodeYAML(path string, dst any) error {
	in, err := openInput(path)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := yaml.NewDecoder(in).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// readForm reads a single competitor form.
func readForm(path string) (scoring.Form, error) {
	var form scoring.Form
	if err := decodeYAML(path, &form); err != nil {
		return nil, err
	}
	return form, nil
}

// readField reads a list of competitor forms, each optionally priced by live_odds.
func readField(path string) ([]engine.Submission, error) {
	var forms []scoring.Form
	if err := decodeYAML(path, &forms); err != nil {
		return nil, err
	}
	subs := make([]engine.Submission, 0, len(forms))
	for _, f := range forms {
		subs = append(subs, engine.Submission{Form: f})
	}
	return subs, nil
}
