package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"distill/internal/core"
	"distill/internal/logger"
	"distill/internal/prefs"
)

// NewPrefsCmd creates the preference-profile command
func NewPrefsCmd() *cobra.Command {
	prefsCmd := &cobra.Command{
		Use:   "prefs",
		Short: "Derive user preference profiles from reading history",
	}

	prefsCmd.AddCommand(newPrefsUpdateCmd())

	return prefsCmd
}

func newPrefsUpdateCmd() *cobra.Command {
	updateCmd := &cobra.Command{
		Use:   "update [user-id]",
		Short: "Recompute a user's profile from a reading-session export",
		Long: `Read a JSON array of reading sessions, recompute the user's preference
profile from the last 30 days of history, and write the profile JSON.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			sessionsPath, _ := cmd.Flags().GetString("sessions")
			output, _ := cmd.Flags().GetString("output")

			if err := runPrefsUpdate(cmd.Context(), args[0], sessionsPath, output); err != nil {
				logger.Error("Preference update failed", err, map[string]interface{}{"user_id": args[0]})
				os.Exit(1)
			}
		},
	}

	updateCmd.Flags().String("sessions", "", "Path to a JSON array of reading sessions (required)")
	updateCmd.Flags().StringP("output", "o", "", "Write the profile JSON to a file instead of stdout")
	_ = updateCmd.MarkFlagRequired("sessions")

	return updateCmd
}

func runPrefsUpdate(ctx context.Context, userID, sessionsPath, output string) error {
	store, err := newFileSessionStore(sessionsPath)
	if err != nil {
		return err
	}
	sink := &fileProfileStore{path: output}

	learner := prefs.NewLearner(store, sink)
	if err := learner.UpdateUserPreferences(ctx, userID); err != nil {
		return err
	}
	if sink.profile == nil {
		fmt.Println("No session history in the last 30 days; profile unchanged.")
	}
	return nil
}

// fileSessionStore serves sessions from a JSON export file.
type fileSessionStore struct {
	sessions []core.ReadingSession
}

func newFileSessionStore(path string) (*fileSessionStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions file: %w", err)
	}
	var sessions []core.ReadingSession
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("failed to parse sessions file: %w", err)
	}
	return &fileSessionStore{sessions: sessions}, nil
}

func (s *fileSessionStore) SessionsSince(_ context.Context, userID string, since time.Time) ([]core.ReadingSession, error) {
	var out []core.ReadingSession
	for _, sess := range s.sessions {
		if sess.UserID == userID && sess.ReadAt.After(since) {
			out = append(out, sess)
		}
	}
	return out, nil
}

// fileProfileStore writes the upserted profile as JSON.
type fileProfileStore struct {
	path    string
	profile *core.UserPreferenceProfile
}

func (s *fileProfileStore) GetProfile(_ context.Context, _ string) (*core.UserPreferenceProfile, error) {
	return s.profile, nil
}

func (s *fileProfileStore) UpsertProfile(_ context.Context, profile core.UserPreferenceProfile) error {
	s.profile = &profile
	encoded, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	return writeOutput(s.path, encoded)
}
