// Package provider defines the repository content model consumed by the walker.
package provider

import (
	"context"
	"fmt"
)

// Kind identifies the variant of an Entry.
type Kind int

const (
	// KindUnknown is any entry type the walker does not handle (symlinks etc.).
	KindUnknown Kind = iota
	// KindFile is a regular file whose bytes can be read.
	KindFile
	// KindDirectory is a directory whose children can be listed.
	KindDirectory
	// KindSubmodule is a link to another, independently versioned repository.
	KindSubmodule
)

// String returns the human-readable name of a Kind.
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "dir"
	case KindSubmodule:
		return "submodule"
	default:
		return "unknown"
	}
}

// Entry is one node of a repository content tree.
type Entry struct {
	Kind Kind
	// Path is relative to the root of the repository that listed the entry.
	Path string
	// Target references the linked repository of a submodule: the pinned
	// commit and, when the provider knows it, the repository location.
	Target SubmoduleTarget
	// RawType is the provider's own name for the entry type.
	RawType string
}

// SubmoduleTarget is what a provider knows about a submodule link at listing time.
type SubmoduleTarget struct {
	SHA string
	URL string
}

// File returns a file entry.
func File(path string) Entry {
	return Entry{Kind: KindFile, Path: path, RawType: KindFile.String()}
}

// Directory returns a directory entry.
func Directory(path string) Entry {
	return Entry{Kind: KindDirectory, Path: path, RawType: KindDirectory.String()}
}

// Submodule returns a submodule entry.
func Submodule(path string, target SubmoduleTarget) Entry {
	return Entry{Kind: KindSubmodule, Path: path, Target: target, RawType: KindSubmodule.String()}
}

// Unknown returns an entry the walker will log and skip.
func Unknown(path, rawType string) Entry {
	return Entry{Kind: KindUnknown, Path: path, RawType: rawType}
}

// Provider exposes the content of one repository.
type Provider interface {
	// ID identifies the repository and revision, e.g. "github.com/owner/name@sha".
	ID() string
	// List returns the immediate children of a directory. "" is the root.
	List(ctx context.Context, path string) ([]Entry, error)
	// Read returns the raw bytes of a file.
	Read(ctx context.Context, path string) ([]byte, error)
	// Submodule resolves a submodule entry into a provider for the linked repository.
	Submodule(ctx context.Context, entry Entry) (Provider, error)
}

// SubmoduleError reports a submodule that could not be resolved.
type SubmoduleError struct {
	Path string
	Err  error
}

func (e *SubmoduleError) Error() string {
	return fmt.Sprintf("could not resolve submodule %q: %v", e.Path, e.Err)
}

func (e *SubmoduleError) Unwrap() error {
	return e.Err
}
