package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/sqweek/dialog"

	"trs80/pkg/machine"
	"trs80/pkg/utils"
)

// dialogPicker backs bare LOAD and SAVE with native file dialogs.
type dialogPicker struct {
	dir string
}

func (p dialogPicker) builder(title string) *dialog.FileBuilder {
	b := dialog.File().Title(title).Filter("BASIC programs", "bas", "txt")
	if p.dir != "" {
		if abs, err := filepath.Abs(p.dir); err == nil {
			b = b.SetStartDir(abs)
		}
	}
	return b
}

func (p dialogPicker) Open() (string, []byte, error) {
	path, err := p.builder("LOAD").Load()
	if errors.Is(err, dialog.ErrCancelled) {
		return "", nil, machine.ErrCancelled
	}
	if err != nil {
		return "", nil, err
	}
	data, err := os.ReadFile(path)
	return filepath.Base(path), data, err
}

func (p dialogPicker) Save(text string) (string, error) {
	path, err := p.builder("SAVE").Save()
	if errors.Is(err, dialog.ErrCancelled) {
		return "", machine.ErrCancelled
	}
	if err != nil {
		return "", err
	}
	full, err := utils.WriteProgram(path, text)
	return filepath.Base(full), err
}
