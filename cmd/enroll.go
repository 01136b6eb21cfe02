package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/akranjan/facemark/internal/config"
	"github.com/akranjan/facemark/internal/frame"
	"github.com/akranjan/facemark/internal/recognizer"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <image-path> [image-path...]",
	Short: "Register a student from captured face frames",
	Long: `Register a student with the recognition service from 5 to 10 face
images. Arguments may be image files or directories; directories are
scanned non-recursively for supported image files.

Example:
  facemark enroll --name "Jana Novak" --roll R42 --year "2nd Year" --session 2023-2027 /path/to/frames`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("name", "", "Student name (required)")
	enrollCmd.Flags().String("roll", "", "Roll number (required)")
	enrollCmd.Flags().String("year", "", "Year of study, e.g. \"1st Year\" (required)")
	enrollCmd.Flags().String("session", "", "Academic session, e.g. \"2024-2028\" (required)")
	enrollCmd.MarkFlagRequired("name")
	enrollCmd.MarkFlagRequired("roll")
	enrollCmd.MarkFlagRequired("year")
	enrollCmd.MarkFlagRequired("session")
}

// isImageFile checks if a file has a supported image extension.
func isImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	supported := map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
		".webp": true,
		".bmp":  true,
	}
	return supported[ext]
}

// collectImagePaths expands file and directory arguments into image paths.
func collectImagePaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot read folder %s: %w", arg, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && isImageFile(entry.Name()) {
				paths = append(paths, filepath.Join(arg, entry.Name()))
			}
		}
	}
	return paths, nil
}

func newTransferBar(count int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(count,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func runEnroll(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if cfg.Backend.URL == "" {
		return errors.New("BACKEND_URL environment variable is required")
	}

	profile := recognizer.Profile{
		Name:       mustGetString(cmd, "name"),
		RollNumber: mustGetString(cmd, "roll"),
		Year:       mustGetString(cmd, "year"),
		Session:    mustGetString(cmd, "session"),
	}
	if !cfg.Programs.ValidYear(profile.Year) {
		return fmt.Errorf("unknown year %q (choices: %s)", profile.Year, strings.Join(cfg.Programs.Years, ", "))
	}
	if !cfg.Programs.ValidSession(profile.Session) {
		return fmt.Errorf("unknown session %q (choices: %s)", profile.Session, strings.Join(cfg.Programs.Sessions, ", "))
	}

	paths, err := collectImagePaths(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("no image files found in the given paths")
	}

	buffer := frame.NewBuffer()
	bar := newTransferBar(len(paths), "Loading frames")
	for _, path := range paths {
		f, err := frame.FromFile(path)
		if err != nil {
			if errors.Is(err, frame.ErrMalformedFrame) {
				fmt.Fprintf(os.Stderr, "warning: skipping %s: not a valid image\n", path)
				bar.Add(1)
				continue
			}
			return err
		}
		if _, err := buffer.Capture(f); err != nil {
			fmt.Fprintf(os.Stderr, "warning: skipping %s: %v\n", path, err)
		}
		bar.Add(1)
	}
	fmt.Println()

	if !buffer.CanSubmit() {
		return fmt.Errorf("need at least %d valid frames, have %d", frame.MinFrames, buffer.Len())
	}

	client, err := recognizer.NewWithCapture(cfg.Backend.URL, captureDir)
	if err != nil {
		return fmt.Errorf("failed to create recognition client: %w", err)
	}

	fmt.Printf("Enrolling %s (%s) with %d frames...\n", profile.Name, profile.RollNumber, buffer.Len())
	result, err := client.Enroll(context.Background(), profile, buffer.Frames())
	if err != nil {
		var verr *recognizer.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("backend rejected enrollment: %s", verr.Message)
		}
		return err
	}
	buffer.Reset()

	fmt.Printf("Done! Student ID: %s\n", result.StudentID)
	if result.Message != "" {
		fmt.Println(result.Message)
	}
	return nil
}
