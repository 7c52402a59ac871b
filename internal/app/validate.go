package app

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"horse.fit/ecmgraph/schema"
)

type validateResult struct {
	Scanned int
	Valid   int
	Invalid int
}

func runValidate(args []string) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	file := fs.String("file", "", "Document file to validate")
	dir := fs.String("dir", "", "Directory of .json document files to validate")
	recursive := fs.Bool("recursive", false, "Recursively scan subdirectories of --dir")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	var files []string
	switch {
	case strings.TrimSpace(*file) != "":
		files = []string{strings.TrimSpace(*file)}
	case strings.TrimSpace(*dir) != "":
		collected, err := collectJSONFiles(strings.TrimSpace(*dir), *recursive)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Validation setup failed: %v\n", err)
			return 1
		}
		files = collected
	default:
		fmt.Fprintln(os.Stderr, "one of --file or --dir is required")
		return 2
	}

	result := validateFiles(files)

	fmt.Printf(
		"validate scanned=%d valid=%d invalid=%d\n",
		result.Scanned,
		result.Valid,
		result.Invalid,
	)

	if result.Scanned == 0 {
		fmt.Fprintf(os.Stderr, "Validation failed: no .json files found under %s\n", strings.TrimSpace(*dir))
		return 1
	}
	if result.Invalid > 0 {
		return 1
	}
	return 0
}

func validateFiles(files []string) validateResult {
	result := validateResult{}
	for _, path := range files {
		result.Scanned++

		raw, err := os.ReadFile(path)
		if err != nil {
			result.Invalid++
			fmt.Fprintf(os.Stderr, "INVALID %s: read failed: %v\n", path, err)
			continue
		}

		if !json.Valid(raw) {
			result.Invalid++
			fmt.Fprintf(os.Stderr, "INVALID %s: malformed JSON\n", path)
			continue
		}

		doc, err := schema.ValidateDocument(raw)
		if err != nil {
			result.Invalid++
			fmt.Fprintf(os.Stderr, "INVALID %s: %v\n", path, err)
			continue
		}

		result.Valid++
		fmt.Printf("VALID %s nodes=%d relationships=%d\n", path, sum(doc.NodeCounts()), sum(doc.RelationshipCounts()))
	}
	return result
}

func sum(counts map[string]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}

func collectJSONFiles(root string, recursive bool) ([]string, error) {
	cleanRoot := strings.TrimSpace(root)
	if cleanRoot == "" {
		return nil, fmt.Errorf("directory path is empty")
	}

	info, err := os.Stat(cleanRoot)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", cleanRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", cleanRoot)
	}

	var files []string
	if !recursive {
		entries, err := os.ReadDir(cleanRoot)
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", cleanRoot, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			if strings.HasPrefix(name, ".") {
				continue
			}
			if strings.EqualFold(filepath.Ext(name), ".json") {
				files = append(files, filepath.Join(cleanRoot, name))
			}
		}
		sort.Strings(files)
		return files, nil
	}

	err = filepath.WalkDir(cleanRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != cleanRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", cleanRoot, err)
	}

	sort.Strings(files)
	return files, nil
}
