package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/readfold/readfold/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage readfold settings",
	RunE:  runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a setting",
	Long: `Sets a single setting and persists it.

Keys: endpoint, api_key, siyuan_url, siyuan_token, custom_query,
lookback_hours, frequency_minutes, merge_mode (none|messages|all),
notebook, folder, folder_date_format, filename, merge_folder,
merge_folder_date_format, bucket_filename, attachment_folder,
image_mode (local|remote|disabled), image_folder, template,
message_template, front_matter_variables (comma-separated),
date_saved_format, date_highlighted_format.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if stateStore == nil {
		return errors.New("settings store not configured")
	}
	s := stateStore.Settings()

	cmd.Printf("endpoint:                 %s\n", s.Endpoint)
	cmd.Printf("api_key:                  %s\n", maskSecret(s.APIKey))
	cmd.Printf("siyuan_url:               %s\n", s.SiyuanURL)
	cmd.Printf("siyuan_token:             %s\n", maskSecret(s.SiyuanToken))
	cmd.Printf("custom_query:             %s\n", s.CustomQuery)
	cmd.Printf("lookback_hours:           %d\n", s.LookbackHours)
	cmd.Printf("frequency_minutes:        %d\n", s.FrequencyMinutes)
	cmd.Printf("merge_mode:               %s\n", s.MergeMode)
	cmd.Printf("notebook:                 %s\n", s.Notebook)
	cmd.Printf("folder:                   %s\n", s.Folder)
	cmd.Printf("folder_date_format:       %s\n", s.FolderDateFormat)
	cmd.Printf("filename:                 %s\n", s.FilenameTemplate)
	cmd.Printf("merge_folder:             %s\n", s.MergeFolder)
	cmd.Printf("merge_folder_date_format: %s\n", s.MergeFolderDateFormat)
	cmd.Printf("bucket_filename:          %s\n", s.BucketFilename)
	cmd.Printf("attachment_folder:        %s\n", s.AttachmentFolder)
	cmd.Printf("image_mode:               %s\n", s.ImageMode)
	cmd.Printf("image_folder:             %s\n", s.ImageFolder)
	cmd.Printf("front_matter_variables:   %s\n", strings.Join(s.FrontMatterVariables, ","))
	cmd.Printf("date_saved_format:        %s\n", s.DateSavedFormat)
	cmd.Printf("date_highlighted_format:  %s\n", s.DateHighlightedFormat)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if stateStore == nil {
		return errors.New("settings store not configured")
	}
	key, value := args[0], args[1]

	s := stateStore.Settings()
	if err := applySetting(&s, key, value); err != nil {
		return err
	}
	if err := stateStore.SaveSettings(s); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	cmd.Printf("Set %s\n", key)
	return nil
}

// applySetting updates one settings field by key.
func applySetting(s *domain.Settings, key, value string) error {
	switch key {
	case "endpoint":
		s.Endpoint = value
	case "api_key":
		s.APIKey = value
	case "siyuan_url":
		s.SiyuanURL = value
	case "siyuan_token":
		s.SiyuanToken = value
	case "custom_query":
		s.CustomQuery = value
	case "lookback_hours":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("lookback_hours must be a non-negative integer")
		}
		s.LookbackHours = n
	case "frequency_minutes":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("frequency_minutes must be a non-negative integer")
		}
		s.FrequencyMinutes = n
	case "merge_mode":
		mode := domain.MergeMode(value)
		if !mode.IsValid() {
			return fmt.Errorf("merge_mode must be one of: none, messages, all")
		}
		s.MergeMode = mode
	case "notebook":
		s.Notebook = value
	case "folder":
		s.Folder = value
	case "folder_date_format":
		s.FolderDateFormat = value
	case "filename":
		s.FilenameTemplate = value
	case "merge_folder":
		s.MergeFolder = value
	case "merge_folder_date_format":
		s.MergeFolderDateFormat = value
	case "bucket_filename":
		s.BucketFilename = value
	case "attachment_folder":
		s.AttachmentFolder = value
	case "image_mode":
		mode := domain.ImageMode(value)
		if !mode.IsValid() {
			return fmt.Errorf("image_mode must be one of: local, remote, disabled")
		}
		s.ImageMode = mode
	case "image_folder":
		s.ImageFolder = value
	case "template":
		s.Template = value
	case "message_template":
		s.MessageTemplate = value
	case "front_matter_variables":
		s.FrontMatterVariables = splitList(value)
	case "date_saved_format":
		s.DateSavedFormat = value
	case "date_highlighted_format":
		s.DateHighlightedFormat = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func maskSecret(v string) string {
	if v == "" {
		return "(not set)"
	}
	if len(v) <= 4 {
		return "****"
	}
	return v[:4] + strings.Repeat("*", len(v)-4)
}
