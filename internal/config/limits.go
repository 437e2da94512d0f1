package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Names are shown in breadcrumbs and list rows, so they stay short.
	MaxFolderNameLength = 255

	// MaxFolderDescriptionLength is the maximum length for folder descriptions.
	MaxFolderDescriptionLength = 2000

	// MaxFolderItemsPerFolder caps the number of items a single folder may hold.
	// The whole collection is one blob, so an unbounded folder grows every write.
	MaxFolderItemsPerFolder = 10000

	// MaxItemTypeLength is the maximum length for a folder item type tag.
	MaxItemTypeLength = 64
)
