package rawio

import (
	"os"
	"path/filepath"
	"runtime"
)

// UserProfile is one enumerated user home directory.
type UserProfile struct {
	Name string
	Path string
}

// ListUsers enumerates user profile directories the platform-correct way:
// %SystemDrive%\Users on Windows, /home on Linux, /Users on macOS.
func ListUsers() ([]UserProfile, error) {
	root := usersRoot()
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var profiles []UserProfile
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		profiles = append(profiles, UserProfile{
			Name: e.Name(),
			Path: filepath.Join(root, e.Name()),
		})
	}
	return profiles, nil
}

func usersRoot() string {
	switch runtime.GOOS {
	case "windows":
		drive := os.Getenv("SystemDrive")
		if drive == "" {
			drive = "C:"
		}
		return filepath.Join(drive+`\`, "Users")
	case "darwin":
		return "/Users"
	default:
		return "/home"
	}
}
