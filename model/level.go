package model

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
)

var ErrBadLevelName = errors.New("bad level name")

// ReadLevel joins the rows of a level description into one row-major layout.
func ReadLevel(reader io.Reader) (string, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Split(bufio.ScanLines)
	var layout strings.Builder
	for scanner.Scan() {
		layout.WriteString(strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	s := layout.String()
	if n := len([]rune(s)); n != Cols*Rows {
		return "", fmt.Errorf("%w: %d glyphs, want %d", ErrBadLayout, n, Cols*Rows)
	}
	return s, nil
}

// LoadLevel resolves a level name to its layout in the level store.
func LoadLevel(levels fs.FS, name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || !fs.ValidPath(name) {
		return "", fmt.Errorf("%w: %q", ErrBadLevelName, name)
	}
	file, err := levels.Open(name)
	if err != nil {
		return "", fmt.Errorf("open level %q: %w", name, err)
	}
	defer file.Close()
	layout, err := ReadLevel(file)
	if err != nil {
		return "", fmt.Errorf("read level %q: %w", name, err)
	}
	return layout, nil
}
