package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// readInput loads document text from a URL, a file, or stdin.
// Inputs named *.gz are decompressed transparently.
func readInput(arg string, url string) ([]byte, error) {
	if url != "" {
		return fetchURL(url)
	}

	if arg == "" || arg == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}

	f, err := os.Open(arg)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", arg, err)
	}
	defer f.Close()
	return readMaybeGzip(f, arg)
}

func fetchURL(url string) ([]byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", url, resp.Status)
	}
	return readMaybeGzip(resp.Body, url)
}

func readMaybeGzip(r io.Reader, name string) ([]byte, error) {
	if strings.HasSuffix(name, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gunzip %s: %w", name, err)
		}
		defer gz.Close()
		r = gz
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}
