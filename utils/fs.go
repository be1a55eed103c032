package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

type Fs struct {
	AppFs afero.Fs
}

func NewFs(appFs afero.Fs) Fs {
	return Fs{AppFs: appFs}
}

func (fs Fs) WriteJSON(filePath string, data interface{}) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return xerrors.Errorf("failed to marshal JSON: %w", err)
	}

	if err = fs.AppFs.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
		return xerrors.Errorf("unable to create a directory: %w", err)
	}

	f, err := fs.AppFs.Create(filePath)
	if err != nil {
		return xerrors.Errorf("unable to open a file: %w", err)
	}
	defer f.Close()

	if _, err = f.Write(b); err != nil {
		return xerrors.Errorf("failed to save a file: %w", err)
	}
	return nil
}

// SaveCVEPerYear writes data to dir/<year>/<cveID>.json
func (fs Fs) SaveCVEPerYear(dir, cveID string, data interface{}) (string, error) {
	year, err := CVEYear(cveID)
	if err != nil {
		return "", err
	}

	filePath := filepath.Join(dir, year, fmt.Sprintf("%s.json", cveID))
	if err = fs.WriteJSON(filePath, data); err != nil {
		return "", xerrors.Errorf("failed to write file: %w", err)
	}
	return filePath, nil
}
