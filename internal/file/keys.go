package file

import "strings"

// keyPrefix is the fixed root of the object-store namespace.
const keyPrefix = "uploads"

// ObjectKey returns the object-store key for a wallet's file:
// "uploads/<walletAddress>/<filename>".
func ObjectKey(walletAddress, filename string) string {
	return keyPrefix + "/" + walletAddress + "/" + filename
}

// FolderKey returns the marker-object key for a wallet's folder:
// "uploads/<walletAddress>/<folderName>/".
func FolderKey(walletAddress, folderName string) string {
	return keyPrefix + "/" + walletAddress + "/" + folderName + "/"
}

// Extension returns the text after the last dot in filename, or "" when the
// filename has no dot.
func Extension(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 || i == len(filename)-1 {
		return ""
	}
	return filename[i+1:]
}
