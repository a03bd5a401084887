/*
 * Copyright (c) SAS Institute Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package xar

import "github.com/go-xar/xargen/pkg/xarerr"

// FileData carries everything the generator and TOC need to know about a
// FileEntry's payload. Size is supplied by the caller; Length, Offset, and
// both checksums are filled in during Generate.
type FileData struct {
	// Size is the uncompressed payload length, known before generation.
	Size int64
	// Length is the compressed payload length, set during generation.
	Length int64
	// Offset is the byte offset within the heap, set during generation.
	Offset int64
	// ArchivedChecksum is the SHA-1 hex digest of the compressed bytes.
	ArchivedChecksum string
	// ExtractedChecksum is the SHA-1 hex digest of the uncompressed bytes.
	ExtractedChecksum string

	// data holds the compressed payload transiently between layout
	// planning and heap emission. It is not meant to be read directly;
	// callers that need the bytes should go through the Reader path.
	data []byte
}

// FileNode is a node in the input forest: either a FileEntry or a
// DirectoryEntry. Id is 0 until assigned by Generate, unless the caller
// pre-assigned a positive id.
type FileNode struct {
	// Id is this node's identifier, unique within the archive. 0 means
	// unassigned; Generate fills it in.
	Id int

	// Name is the node's basename as it appears in the TOC.
	Name string

	// SrcPath is the sole source of truth for where this node's bytes
	// live. It is not joined with the parent's path or the node's own
	// Name -- the caller sets it explicitly on every node.
	SrcPath string

	// IsDir distinguishes a DirectoryEntry from a FileEntry.
	IsDir bool

	// Children holds a DirectoryEntry's ordered child nodes. Unused for
	// a FileEntry.
	Children []*FileNode

	// Data holds a FileEntry's payload metadata. Unused for a
	// DirectoryEntry.
	Data *FileData
}

// NewFileEntry constructs a leaf FileNode with the given name, source path,
// and declared uncompressed size.
func NewFileEntry(name, srcPath string, size int64) *FileNode {
	return &FileNode{
		Name:    name,
		SrcPath: srcPath,
		Data:    &FileData{Size: size},
	}
}

// NewDirectoryEntry constructs a DirectoryEntry with the given name, source
// path, and ordered children.
func NewDirectoryEntry(name, srcPath string, children ...*FileNode) *FileNode {
	return &FileNode{
		Name:     name,
		SrcPath:  srcPath,
		IsDir:    true,
		Children: children,
	}
}

// validate checks the invariants every node must satisfy before layout:
// a name and a source path.
func (n *FileNode) validate() error {
	if n.Name == "" {
		return &xarerr.InvalidInputError{Path: n.SrcPath, Reason: "missing name"}
	}
	if n.SrcPath == "" {
		return &xarerr.InvalidInputError{Path: n.Name, Reason: "missing srcPath"}
	}
	return nil
}

// walkFunc is called once per node during a depth-first walk, receiving the
// node itself; the node's own SrcPath is never computed or joined by the
// walker.
type walkFunc func(node *FileNode) error

// walkForest visits every node reachable from roots, depth-first, children
// in the order given. It is shared by id assignment and heap layout so both
// passes traverse the forest the same way instead of each building its own
// intermediate slice.
func walkForest(roots []*FileNode, visit walkFunc) error {
	var walk func(n *FileNode) error
	walk = func(n *FileNode) error {
		if err := n.validate(); err != nil {
			return err
		}
		if err := visit(n); err != nil {
			return err
		}
		for _, child := range n.Children {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	for _, root := range roots {
		if err := walk(root); err != nil {
			return err
		}
	}
	return nil
}

// fileEntries collects every FileEntry (non-directory node) reachable from
// roots, depth-first, without sorting.
func fileEntries(roots []*FileNode) ([]*FileNode, error) {
	var files []*FileNode
	err := walkForest(roots, func(n *FileNode) error {
		if !n.IsDir {
			files = append(files, n)
		}
		return nil
	})
	return files, err
}
