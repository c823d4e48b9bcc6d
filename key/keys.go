// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Site Access - these keys locate the video-hosting site and the account used against it.
const (
	SiteURL   = "site.url"
	SiteEmail = "site.email"
)

// Download Behavior - these keys govern destination layout and the transfer retry policy.
const (
	DownloadsDir     = "downloads.dir"
	DownloadsRetry   = "downloads.retry"
	DownloadsForce   = "downloads.force"
	DownloadsQuality = "downloads.quality_cap"
)

// Network Tuning - these keys configure the HTTP session shared by every request.
const (
	NetworkFingerprint = "network.tls_fingerprint"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern terminal output behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)

// Iconography - this key manages the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)
