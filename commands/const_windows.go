package commands

import (
	"path/filepath"

	"golang.org/x/sys/windows"
)

var (
	DEFAULT_WORKDIR     = workdir()
	DEFAULT_CREDENTIALS = filepath.Join(workdir(), ".google", "credentials.json")
	DEFAULT_CONFIG      = filepath.Join(workdir(), "docgen.yaml")
)

func workdir() string {
	programData, err := windows.KnownFolderPath(windows.FOLDERID_ProgramData, windows.KF_FLAG_DEFAULT)
	if err != nil {
		return `C:\uhppoted\docgen`
	}

	return filepath.Join(programData, "uhppoted", "docgen")
}
