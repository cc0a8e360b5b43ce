package platform

// Package platform wraps OS-specific file operations: revealing and opening
// files through the system shell, directory creation, and file copying for
// the save flow.
