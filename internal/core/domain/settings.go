package domain

// ImageMode defines how remote images referenced by item content are handled.
type ImageMode string

// Available image modes.
const (
	// ImageModeLocal downloads images into the host asset space and
	// rewrites links to the stored paths.
	ImageModeLocal ImageMode = "local"

	// ImageModeRemote leaves remote image URLs in place.
	ImageModeRemote ImageMode = "remote"

	// ImageModeDisabled strips nothing and downloads nothing.
	ImageModeDisabled ImageMode = "disabled"
)

// IsValid returns true if the image mode is recognised.
func (m ImageMode) IsValid() bool {
	switch m {
	case ImageModeLocal, ImageModeRemote, ImageModeDisabled:
		return true
	default:
		return false
	}
}

// DefaultTemplate is the content template applied when none is configured.
const DefaultTemplate = `# {{{title}}}
#笔记同步助手

## 来源
[原文链接]({{{originalUrl}}})

## 正文
{{{content}}}`

// DefaultMessageTemplate renders a clipped message block inside a bucket.
const DefaultMessageTemplate = "---\n## 📅 {{{dateSaved}}}\n{{{content}}}"

// Settings is the user configuration consumed by the sync engine.
// Persisted as simple key-value configuration outside the core.
type Settings struct {
	// Endpoint is the remote source GraphQL endpoint.
	Endpoint string `toml:"endpoint"`

	// APIKey authenticates against the remote source.
	APIKey string `toml:"api_key"`

	// SiyuanURL is the host kernel address.
	SiyuanURL string `toml:"siyuan_url"`

	// SiyuanToken authenticates against the host kernel. Empty when the
	// kernel runs without auth.
	SiyuanToken string `toml:"siyuan_token"`

	// CustomQuery is an optional free-text filter appended to every search.
	CustomQuery string `toml:"custom_query"`

	// LookbackHours widens the incremental fetch window backwards.
	LookbackHours int `toml:"lookback_hours"`

	// FrequencyMinutes is the scheduled sync interval. 0 disables it.
	FrequencyMinutes int `toml:"frequency_minutes"`

	// MergeMode selects the placement strategy.
	MergeMode MergeMode `toml:"merge_mode"`

	// Notebook is the target notebook ID. Empty selects the host's first
	// open notebook.
	Notebook string `toml:"notebook"`

	// Folder is the folder path template for standalone documents.
	Folder string `toml:"folder"`

	// FolderDateFormat is the Go layout for {{{date}}} in Folder.
	FolderDateFormat string `toml:"folder_date_format"`

	// FilenameTemplate renders the standalone document filename.
	FilenameTemplate string `toml:"filename"`

	// MergeFolder is the folder path template for merge buckets.
	MergeFolder string `toml:"merge_folder"`

	// MergeFolderDateFormat is the Go layout for {{{date}}} in MergeFolder.
	MergeFolderDateFormat string `toml:"merge_folder_date_format"`

	// BucketFilename renders the merge bucket filename from its date key.
	BucketFilename string `toml:"bucket_filename"`

	// AttachmentFolder receives downloaded attachments. Must be under assets/.
	AttachmentFolder string `toml:"attachment_folder"`

	// ImageMode selects image handling.
	ImageMode ImageMode `toml:"image_mode"`

	// ImageFolder receives downloaded images. Supports date placeholders
	// and must be under assets/.
	ImageFolder string `toml:"image_folder"`

	// Template is the content template for articles.
	Template string `toml:"template"`

	// MessageTemplate is the content template for clipped messages.
	MessageTemplate string `toml:"message_template"`

	// FrontMatterVariables lists the front matter fields to emit, in order.
	FrontMatterVariables []string `toml:"front_matter_variables"`

	// DateSavedFormat is the Go layout for rendered save dates.
	DateSavedFormat string `toml:"date_saved_format"`

	// DateHighlightedFormat is the Go layout for rendered highlight dates.
	DateHighlightedFormat string `toml:"date_highlighted_format"`
}

// DefaultSettings returns the settings applied before any user config.
func DefaultSettings() Settings {
	return Settings{
		Endpoint:              "",
		APIKey:                "",
		SiyuanURL:             "http://127.0.0.1:6806",
		LookbackHours:         12,
		FrequencyMinutes:      0,
		MergeMode:             MergeModeMessages,
		Folder:                "笔记同步助手/{{{date}}}",
		FolderDateFormat:      "2006-01-02",
		FilenameTemplate:      "{{{title}}}",
		MergeFolder:           "笔记同步助手/微信消息/{{{date}}}",
		MergeFolderDateFormat: "2006-01",
		BucketFilename:        "同步助手_{{{date}}}",
		AttachmentFolder:      "assets/笔记同步助手/attachments",
		ImageMode:             ImageModeLocal,
		ImageFolder:           "assets/笔记同步助手/images/{{{date}}}",
		Template:              DefaultTemplate,
		MessageTemplate:       DefaultMessageTemplate,
		DateSavedFormat:       "2006-01-02 15:04:05",
		DateHighlightedFormat: "2006-01-02 15:04:05",
	}
}

// Configured reports whether the remote source can be reached at all.
func (s *Settings) Configured() bool {
	return s.Endpoint != "" && s.APIKey != ""
}

// Cursor builds the sync cursor for these settings from the persisted
// last-sync time.
func (s *Settings) CursorFrom(state SyncState) Cursor {
	return Cursor{LastSync: state.LastSync, LookbackHours: s.LookbackHours}
}
