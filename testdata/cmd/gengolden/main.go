// Command gengolden regenerates the "want" section of the golden archives
// under testdata/golden.
//
// Run it from the module root:
//
//	go run ./testdata/cmd/gengolden
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/tools/txtar"

	"github.com/mpyw/jvmflow"
	"github.com/mpyw/jvmflow/internal/config"
)

func main() {
	files, err := filepath.Glob(filepath.Join("testdata", "golden", "*.txtar"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, file := range files {
		fmt.Printf("Generating golden for %s...\n", filepath.Base(file))

		if err := generateGoldenFile(file); err != nil {
			fmt.Printf("  Error: %v\n", err)
			continue
		}

		fmt.Printf("  Updated %s\n", file)
	}
}

func generateGoldenFile(path string) error {
	ar, err := txtar.ParseFile(path)
	if err != nil {
		return err
	}

	cfg := config.Default()
	var sources []jvmflow.Source
	var kept []txtar.File
	for _, f := range ar.Files {
		switch {
		case f.Name == "want":
			continue
		case f.Name == config.FileName:
			if cfg, err = config.Decode(f.Data); err != nil {
				return err
			}
		case strings.HasSuffix(f.Name, ".j"):
			sources = append(sources, jvmflow.Source{Name: f.Name, Data: f.Data})
		}
		kept = append(kept, f)
	}

	results, err := jvmflow.Run(context.Background(), cfg, sources)
	if err != nil {
		return err
	}
	var want bytes.Buffer
	if err := jvmflow.WriteText(&want, results); err != nil {
		return err
	}

	ar.Files = append(kept, txtar.File{Name: "want", Data: want.Bytes()})
	return os.WriteFile(path, txtar.Format(ar), 0644)
}
