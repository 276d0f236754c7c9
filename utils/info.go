package utils

import (
	"fmt"
	"os"

	"github.com/muskanmahajan37/Falcor/api"
)

// RunGridInfo prints a summary of the .vxt file at inPath.
func RunGridInfo(inPath string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	s, err := api.GridInfo(data)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inPath, err)
	}
	fmt.Print(s)
	return nil
}
