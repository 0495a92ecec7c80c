// Package storage manages the output directory that downloaded images land in.
//
// The storage package handles:
//   - Creating and managing the output directory
//   - Saving images with atomic write operations
//   - Detecting files that were already downloaded
//   - Thread-safe file operations
//
// The Manager type is the primary interface for storage operations. It keys
// everything by final filename and maintains an in-memory index of saved
// files, so a name that is already present is never fetched again. File
// existence is the pipeline's only resume state.
//
// Features:
//   - Atomic file writes using temporary files and rename
//   - Thread-safe operations with read-write mutex
//   - Automatic scanning of existing files on initialization
//   - In-memory index for fast duplicate detection
//
// Usage:
//
//	manager, err := storage.NewManager("instagram_images")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Skip files that already exist
//	if !manager.Exists("123_456_789_n.jpg") {
//	    written, err := manager.Save("123_456_789_n.jpg", body)
//	    if err != nil {
//	        log.Printf("Failed to save image: %v", err)
//	    }
//	    _ = written
//	}
package storage
