// Package utils holds helpers shared by the walktree command line packages.
package utils

const (
	// ConfigFileName is the name of local and global configuration files.
	ConfigFileName = "config.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding the global configuration.
	GlobalConfigDirectoryName = ".walktree"
	// IgnoreFileName is the name of the project's ignore file.
	IgnoreFileName = ".ignore"
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
	// ExclusionPrefix marks patterns that exclude a path and everything below it.
	ExclusionPrefix = "EXCL:"
	// UnknownMimeType is reported when content cannot be sniffed.
	UnknownMimeType = ""

	// LoggerInitializationFailedMessageFormat is printed when the logger cannot be built.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %v\n"
	// ApplicationExecutionFailedMessage is logged when a command fails.
	ApplicationExecutionFailedMessage = "walktree failed"
)
